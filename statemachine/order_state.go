package statemachine

import (
	"fmt"
	"strings"

	"pos-api/models"
)

// Transition defines a valid state change and which roles may perform it
type Transition struct {
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to"`
	Actors []models.UserRole  `json:"actors"`
}

// validTransitions is the authoritative state machine definition.
// PAID is terminal: there are no refunds or reopen transitions.
var validTransitions = []Transition{
	{From: models.StatusUnpaid, To: models.StatusPaid, Actors: []models.UserRole{models.RoleStaff, models.RoleAdmin}},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		for _, a := range t.Actors {
			m[transitionKey{t.From, t.To, a}] = true
		}
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if a given role can move an order from one state to
// another. Unknown roles never can.
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if !actor.Valid() {
		return fmt.Errorf("role %q may not change order status", actor)
	}
	if transitionMap[transitionKey{from, to, actor}] {
		return nil
	}
	return fmt.Errorf("invalid transition: %s → %s is not allowed for role %s; valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from))
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
