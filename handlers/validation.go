package handlers

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"pos-api/apperr"
	"pos-api/services"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// registerValidators teaches gin's validator to compare decimal.Decimal
// fields, so tags such as gte=0 work on money.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// orderRefFromJSON accepts an order id as a JSON number or numeric string,
// or an order code string.
func orderRefFromJSON(raw json.RawMessage) (services.OrderRef, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return services.OrderRef{}, apperr.Validation("orderId is required")
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return services.ParseOrderRef(s)
}

// paymentOrderRef reads the order a payment is for: orderId when present,
// otherwise code.
func paymentOrderRef(orderID json.RawMessage, code string) (services.OrderRef, error) {
	s := strings.TrimSpace(string(orderID))
	if s != "" && s != "null" && s != `""` {
		return orderRefFromJSON(orderID)
	}
	if strings.TrimSpace(code) == "" {
		return services.OrderRef{}, apperr.Validation("orderId or code is required")
	}
	return services.ParseOrderRef(code)
}

// optionalID reads a nullable id field: absent leaves it unset, null or 0
// clears it.
func optionalID(raw json.RawMessage) (*uint, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil, nil
	}
	zero := uint(0)
	if s == "null" || s == `""` {
		return &zero, nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, apperr.Validation("categoryId must be a number or null")
	}
	id := uint(n)
	return &id, nil
}
