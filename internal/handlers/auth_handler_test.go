package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
)

type mockUserService struct {
	registerFunc     func(username, email, password string) (*models.User, error)
	authenticateFunc func(username, password string) (*models.User, error)
	getUserByIDFunc  func(id uint) (*models.User, error)
}

func (m *mockUserService) Register(username, email, password string) (*models.User, error) {
	return m.registerFunc(username, email, password)
}

func (m *mockUserService) Authenticate(username, password string) (*models.User, error) {
	return m.authenticateFunc(username, password)
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	return m.getUserByIDFunc(id)
}

type mockTokenService struct {
	revokeFunc    func(userID uint, tokenHash string, expiresAt time.Time) error
	isRevokedFunc func(tokenHash string) bool
}

func (m *mockTokenService) Revoke(userID uint, tokenHash string, expiresAt time.Time) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(userID, tokenHash, expiresAt)
	}
	return nil
}

func (m *mockTokenService) IsRevoked(tokenHash string) bool {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(tokenHash)
	}
	return false
}

func testUser() *models.User {
	user := &models.User{Username: "alice", Email: "alice@example.com"}
	user.ID = 1
	return user
}

func setupAuthRouter(users *mockUserService, tokens *mockTokenService) *gin.Engine {
	handler := NewAuthHandler(users, tokens)
	router := gin.New()
	router.POST("/users/register", handler.Register)
	router.POST("/users/login", handler.Login)
	router.POST("/users/logout", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint(1))
		c.Set(middleware.ContextTokenHash, "deadbeef")
		c.Set(middleware.ContextTokenExp, time.Now().Add(time.Hour))
	}, handler.Logout)
	return router
}

func TestRegisterHandler(t *testing.T) {
	t.Run("returns_201_with_created_user", func(t *testing.T) {
		users := &mockUserService{
			registerFunc: func(username, email, password string) (*models.User, error) {
				return testUser(), nil
			},
		}
		router := setupAuthRouter(users, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/register", gin.H{
			"username": "alice", "email": "alice@example.com", "password": "password123",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		body := parseJSON(t, w)
		if body["message"] != "User registered successfully" {
			t.Errorf("unexpected message: %v", body["message"])
		}
		user := body["user"].(map[string]interface{})
		if user["username"] != "alice" {
			t.Errorf("expected username alice, got %v", user["username"])
		}
		if _, leaked := user["password_hash"]; leaked {
			t.Error("password hash must never appear in responses")
		}
	})

	t.Run("missing_fields_is_400", func(t *testing.T) {
		router := setupAuthRouter(&mockUserService{}, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/register", gin.H{"username": "alice"})

		assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrMissingFields.Code)
	})

	t.Run("duplicate_username_is_400", func(t *testing.T) {
		users := &mockUserService{
			registerFunc: func(username, email, password string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateUsername
			},
		}
		router := setupAuthRouter(users, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/register", gin.H{
			"username": "alice", "email": "alice@example.com", "password": "password123",
		})

		assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrDuplicateUsername.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("returns_token_and_user", func(t *testing.T) {
		users := &mockUserService{
			authenticateFunc: func(username, password string) (*models.User, error) {
				return testUser(), nil
			},
		}
		router := setupAuthRouter(users, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/login", gin.H{
			"username": "alice", "password": "password123",
		})

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := parseJSON(t, w)
		if body["message"] != "Login successful" {
			t.Errorf("unexpected message: %v", body["message"])
		}
		if token, ok := body["access_token"].(string); !ok || token == "" {
			t.Error("expected a non-empty access_token")
		}
		if _, ok := body["user"]; !ok {
			t.Error("expected user in response")
		}
	})

	t.Run("bad_credentials_is_401", func(t *testing.T) {
		users := &mockUserService{
			authenticateFunc: func(username, password string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		router := setupAuthRouter(users, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/login", gin.H{
			"username": "alice", "password": "wrong",
		})

		assertErrorCode(t, w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Code)
	})

	t.Run("missing_body_is_400", func(t *testing.T) {
		router := setupAuthRouter(&mockUserService{}, &mockTokenService{})

		w := doRequest(t, router, http.MethodPost, "/users/login", gin.H{"username": "alice"})

		assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrMissingFields.Code)
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Run("revokes_the_presented_token", func(t *testing.T) {
		var revokedHash string
		tokens := &mockTokenService{
			revokeFunc: func(userID uint, tokenHash string, expiresAt time.Time) error {
				revokedHash = tokenHash
				return nil
			},
		}
		router := setupAuthRouter(&mockUserService{}, tokens)

		w := doRequest(t, router, http.MethodPost, "/users/logout", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := parseJSON(t, w)
		if body["message"] != "Logged out successfully" {
			t.Errorf("unexpected message: %v", body["message"])
		}
		if revokedHash != "deadbeef" {
			t.Errorf("expected token hash to reach the token service, got %q", revokedHash)
		}
	})
}
