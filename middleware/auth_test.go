package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pos-api/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(a *Auth, roles ...models.UserRole) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{a.AuthRequired()}
	if len(roles) > 0 {
		handlers = append(handlers, RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		role, _ := GetRole(c)
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "role": role})
	})
	r.GET("/private", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	staff, err := a.GenerateToken(&models.User{ID: 7, Email: "s@pos.local", Role: models.RoleStaff})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	other, _ := NewAuth("other-secret", time.Hour).GenerateToken(&models.User{ID: 7, Role: models.RoleStaff})

	expired := NewAuth("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.GenerateToken(&models.User{ID: 7, Role: models.RoleStaff})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"valid", staff, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", other, http.StatusUnauthorized},
		{"expired", old, http.StatusUnauthorized},
	}
	r := newRouter(a)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, tt.token); w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	staff, _ := a.GenerateToken(&models.User{ID: 2, Role: models.RoleStaff})
	admin, _ := a.GenerateToken(&models.User{ID: 1, Role: models.RoleAdmin})
	r := newRouter(a, models.RoleAdmin)

	if w := do(r, staff); w.Code != http.StatusForbidden {
		t.Fatalf("staff status = %d, want 403", w.Code)
	}
	if w := do(r, admin); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}

func TestTokenWithUnknownRoleIsRejected(t *testing.T) {
	a := NewAuth("test-secret", time.Hour)
	token, _ := a.GenerateToken(&models.User{ID: 3, Role: "customer"})
	if w := do(newRouter(a), token); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("preflight = %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unlisted origin must not be allowed")
	}
}
