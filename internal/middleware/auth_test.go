package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/config"
	"fintrack/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRevocations is a RevocationChecker backed by a set of hashes.
type stubRevocations struct {
	revoked map[string]bool
}

func (s *stubRevocations) IsRevoked(tokenHash string) bool {
	return s.revoked[tokenHash]
}

// setupAuthRouter builds a router with a single protected probe route.
func setupAuthRouter(revocations RevocationChecker) *gin.Engine {
	router := gin.New()
	router.GET("/probe", AuthMiddleware(revocations), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetUint(ContextUserID),
			"username": c.GetString(ContextUsername),
		})
	})
	return router
}

func doProbe(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signToken signs claims with the configured key, bypassing the default
// expiry so tests can mint expired tokens.
func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Get().JWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Username: "alice"}
	user.ID = 42

	t.Run("valid_token_sets_user_context", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		token, err := GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		w := doProbe(router, "Bearer "+token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		if body["user_id"].(float64) != 42 {
			t.Errorf("expected user_id 42, got %v", body["user_id"])
		}
		if body["username"] != "alice" {
			t.Errorf("expected username alice, got %v", body["username"])
		}
	})

	t.Run("missing_header_is_unauthorized", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		w := doProbe(router, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("non_bearer_scheme_is_unauthorized", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		w := doProbe(router, "Basic dXNlcjpwYXNz")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed_token_is_unprocessable", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		w := doProbe(router, "Bearer not-a-jwt")
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", w.Code)
		}
	})

	t.Run("expired_token_is_unauthorized", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		past := time.Now().Add(-time.Hour)
		token := signToken(t, &Claims{
			UserID:   user.ID,
			Username: user.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(past),
				IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			},
		})

		w := doProbe(router, "Bearer "+token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("revoked_token_is_unauthorized", func(t *testing.T) {
		token, err := GenerateAccessToken(user)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		router := setupAuthRouter(&stubRevocations{
			revoked: map[string]bool{HashToken(token): true},
		})

		w := doProbe(router, "Bearer "+token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("token_signed_with_wrong_key_is_unauthorized", func(t *testing.T) {
		router := setupAuthRouter(&stubRevocations{revoked: map[string]bool{}})

		claims := &Claims{
			UserID:   user.ID,
			Username: user.Username,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("some-other-key"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}

		w := doProbe(router, "Bearer "+signed)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}
