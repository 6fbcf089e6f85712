package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hd-notes/notes-backend/pkg/oauth"
	usermanagement "github.com/hd-notes/notes-backend/pkg/user-management"
	userTypes "github.com/hd-notes/notes-backend/pkg/user-management/types"
)

type stubUserStore struct {
	mu    sync.Mutex
	users map[string]userTypes.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[string]userTypes.User{}}
}

func (s *stubUserStore) AddUser(user userTypes.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Account.AccountID == user.Account.AccountID {
			return "", usermanagement.ErrAccountExists
		}
	}
	user.ID = primitive.NewObjectID()
	s.users[user.ID.Hex()] = user
	return user.ID.Hex(), nil
}

func (s *stubUserStore) GetUser(userID string) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return userTypes.User{}, usermanagement.ErrAccountNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetUserByEmail(email string) (userTypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Account.AccountID == email {
			return u, nil
		}
	}
	return userTypes.User{}, usermanagement.ErrAccountNotFound
}

func (s *stubUserStore) SetVerificationCode(userID string, vc userTypes.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.Account.VerificationCode = &vc
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) ConsumeVerificationCode(userID string, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.Account.VerificationCode == nil || user.Account.VerificationCode.Code != code {
		return false, nil
	}
	user.Account.VerificationCode = nil
	s.users[userID] = user
	return true, nil
}

func (s *stubUserStore) UpdateProfile(userID string, profile userTypes.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.Profile = profile
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) LinkGoogleAccount(userID string, googleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	if user.Account.GoogleID == "" {
		user.Account.GoogleID = googleID
		s.users[userID] = user
	}
	return nil
}

func (s *stubUserStore) SetLastLogin(userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.Timestamps.LastLogin = at.Unix()
	s.users[userID] = user
	return nil
}

func (s *stubUserStore) pendingCode(t *testing.T, email string) string {
	t.Helper()
	user, err := s.GetUserByEmail(email)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if user.Account.VerificationCode == nil {
		t.Fatal("no pending verification code")
	}
	return user.Account.VerificationCode.Code
}

type stubEmailSender struct{}

func (stubEmailSender) Send(to []string, subject string, textContent string, htmlContent string) error {
	return nil
}

type stubIdentityProvider struct {
	identity oauth.Identity
	err      error
}

func (p *stubIdentityProvider) ExchangeCode(ctx context.Context, code string) (oauth.Identity, error) {
	return p.identity, p.err
}

func (p *stubIdentityProvider) VerifyAccessToken(ctx context.Context, accessToken string) (oauth.Identity, error) {
	return p.identity, p.err
}

const testSignKey = "test-sign-key"

func setupAuthTestRouter(t *testing.T) (*gin.Engine, *stubUserStore, *stubIdentityProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newStubUserStore()
	google := &stubIdentityProvider{}
	authService := usermanagement.NewService(usermanagement.ServiceConfig{}, store, stubEmailSender{}, google)

	handlers := NewHTTPHandler(testSignKey, time.Hour, authService, nil)

	router := gin.New()
	v1 := router.Group("/v1")
	handlers.AddAuthAPI(v1)
	return router, store, google
}

func doRequest(router *gin.Engine, method string, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupAndLoginEndpoints(t *testing.T) {
	router, store, _ := setupAuthTestRouter(t)

	t.Run("send signup otp", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-signup-otp", gin.H{"email": "jonas@example.com"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("pending signup re-request issues a fresh code", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-signup-otp", gin.H{"email": "jonas@example.com"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("verify signup otp with wrong code", func(t *testing.T) {
		code := store.pendingCode(t, "jonas@example.com")
		wrong := string(code[1]) + string(code[0]) + code[2:]
		if wrong == code {
			wrong = code[1:] + string(code[0]+1)
		}
		w := doRequest(router, http.MethodPost, "/v1/auth/verify-signup-otp", gin.H{
			"email": "jonas@example.com", "otp": wrong, "name": "Jonas",
		}, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp["errorKind"] != "invalid_code" {
			t.Errorf("unexpected errorKind: %s", resp["errorKind"])
		}
	})

	var sessionToken string
	t.Run("verify signup otp issues a session", func(t *testing.T) {
		code := store.pendingCode(t, "jonas@example.com")
		w := doRequest(router, http.MethodPost, "/v1/auth/verify-signup-otp", gin.H{
			"email": "jonas@example.com", "otp": code, "name": "Jonas", "birthDate": "1990-04-01",
		}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}

		var resp struct {
			Token struct {
				AccessToken string  `json:"accessToken"`
				ExpiresIn   float64 `json:"expiresIn"`
			} `json:"token"`
			User struct {
				Profile struct {
					Name string `json:"name"`
				} `json:"profile"`
			} `json:"user"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Token.AccessToken == "" {
			t.Fatal("expected an access token")
		}
		if resp.Token.ExpiresIn != time.Hour.Seconds() {
			t.Errorf("unexpected expiresIn: %f", resp.Token.ExpiresIn)
		}
		if resp.User.Profile.Name != "Jonas" {
			t.Errorf("unexpected name: %s", resp.User.Profile.Name)
		}
		sessionToken = resp.Token.AccessToken
	})

	t.Run("me returns the profile", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/auth/me", nil, sessionToken)
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("Jonas")) {
			t.Error("expected profile in response")
		}
		// OTP internals are never serialized
		if bytes.Contains(w.Body.Bytes(), []byte("verificationCode")) {
			t.Error("verification code must not be exposed")
		}
	})

	t.Run("me without token is rejected", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/auth/me", nil, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status: %d", w.Code)
		}
	})

	t.Run("signup for the established account conflicts", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-signup-otp", gin.H{"email": "jonas@example.com"}, "")
		if w.Code != http.StatusConflict {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp["errorKind"] != "conflict" {
			t.Errorf("unexpected errorKind: %s", resp["errorKind"])
		}
	})

	t.Run("login otp for unknown email", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-login-otp", gin.H{"email": "nobody@example.com"}, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("login otp round trip", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-login-otp", gin.H{"email": "jonas@example.com"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}

		code := store.pendingCode(t, "jonas@example.com")
		w = doRequest(router, http.MethodPost, "/v1/auth/verify-login-otp", gin.H{
			"email": "jonas@example.com", "otp": code,
		}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}

		// reusing the consumed code fails
		w = doRequest(router, http.MethodPost, "/v1/auth/verify-login-otp", gin.H{
			"email": "jonas@example.com", "otp": code,
		}, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("empty payload is rejected", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/auth/send-signup-otp", nil, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", w.Code)
		}
	})
}

func TestGoogleLoginEndpoint(t *testing.T) {
	t.Run("with a valid code", func(t *testing.T) {
		router, _, google := setupAuthTestRouter(t)
		google.identity = oauth.Identity{Subject: "google-sub-1", Email: "jonas@example.com", Name: "Jonas"}

		w := doRequest(router, http.MethodPost, "/v1/auth/google", gin.H{"code": "auth-code"}, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("accessToken")) {
			t.Error("expected a session token")
		}
		// the google subject stays internal
		if bytes.Contains(w.Body.Bytes(), []byte("google-sub-1")) {
			t.Error("google subject must not be exposed")
		}
	})

	t.Run("with a rejected proof", func(t *testing.T) {
		router, _, google := setupAuthTestRouter(t)
		google.err = context.DeadlineExceeded

		w := doRequest(router, http.MethodPost, "/v1/auth/google", gin.H{"code": "bad-code"}, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})

	t.Run("without code or token", func(t *testing.T) {
		router, _, _ := setupAuthTestRouter(t)
		w := doRequest(router, http.MethodPost, "/v1/auth/google", gin.H{"foo": "bar"}, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d (%s)", w.Code, w.Body.String())
		}
	})
}
