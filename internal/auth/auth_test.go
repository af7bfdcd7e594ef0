package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type stubUserKeeper struct {
	users map[string]*user.User
}

func (s *stubUserKeeper) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	usr, ok := s.users[userID]
	return usr, ok, nil
}

func newTestAuth(users ...*user.User) *Auth {
	keeper := &stubUserKeeper{users: map[string]*user.User{}}
	for _, usr := range users {
		keeper.users[usr.ID] = usr
	}

	return New(keeper, "test_session", []byte("test-signing-key"), time.Hour)
}

func TestBuildAndParseToken(t *testing.T) {
	theAuth := newTestAuth()

	token, err := theAuth.BuildJWTString("user-1", "a@x.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := theAuth.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestExpiredTokenRejected(t *testing.T) {
	theAuth := newTestAuth()

	token, err := theAuth.BuildJWTString("user-1", "a@x.com", -time.Minute)
	require.NoError(t, err)

	_, err = theAuth.GetUserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForeignSignatureRejected(t *testing.T) {
	theAuth := newTestAuth()
	otherAuth := New(&stubUserKeeper{}, "test_session", []byte("another-key"), time.Hour)

	token, err := otherAuth.BuildJWTString("user-1", "a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = theAuth.GetUserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	theAuth := newTestAuth()

	_, err := theAuth.GetUserIDFromToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateUserMiddleware(t *testing.T) {
	usr := &user.User{ID: "user-1", Email: "a@x.com"}
	theAuth := newTestAuth(usr)

	validToken, err := theAuth.BuildJWTString(usr.ID, usr.Email, time.Hour)
	require.NoError(t, err)

	orphanToken, err := theAuth.BuildJWTString("user-gone", "gone@x.com", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		decorate       func(req *http.Request)
		wantStatusCode int
		wantUserID     string
	}{
		{
			name:           "no credential",
			decorate:       func(req *http.Request) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "bearer token in Authorization header",
			decorate: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer "+validToken)
			},
			wantStatusCode: http.StatusOK,
			wantUserID:     "user-1",
		},
		{
			name: "raw token in Authorization header",
			decorate: func(req *http.Request) {
				req.Header.Set("Authorization", validToken)
			},
			wantStatusCode: http.StatusOK,
			wantUserID:     "user-1",
		},
		{
			name: "token in session cookie",
			decorate: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "test_session", Value: validToken})
			},
			wantStatusCode: http.StatusOK,
			wantUserID:     "user-1",
		},
		{
			name: "tampered token",
			decorate: func(req *http.Request) {
				req.Header.Set("Authorization", validToken+"x")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "token of a removed user",
			decorate: func(req *http.Request) {
				req.Header.Set("Authorization", orphanToken)
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handler := theAuth.AuthenticateUser(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					gotUserID, _ = UserIDFromContext(r.Context())
					w.WriteHeader(http.StatusOK)
				},
			))

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			tt.decorate(req)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatusCode, w.Result().StatusCode)
			assert.Equal(t, tt.wantUserID, gotUserID)
			require.NoError(t, w.Result().Body.Close())
		})
	}
}

type failingUserKeeper struct{}

func (s *failingUserKeeper) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	return nil, false, errors.New("connecting to the database: dial tcp: refused")
}

func TestAuthenticateUserStorageFailure(t *testing.T) {
	theAuth := New(&failingUserKeeper{}, "test_session", []byte("test-signing-key"), time.Hour)

	token, err := theAuth.BuildJWTString("user-1", "a@x.com", time.Hour)
	require.NoError(t, err)

	handler := theAuth.AuthenticateUser(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("the handler must not be reached")
		},
	))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
	assert.Equal(t, "application/json", w.Result().Header.Get("Content-Type"))

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error,
		"infrastructure details must not leak to the client")
	require.NoError(t, w.Result().Body.Close())
}

func TestSetSessionCookie(t *testing.T) {
	theAuth := newTestAuth()

	w := httptest.NewRecorder()
	theAuth.SetSessionCookie(w, "token-value")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, int(time.Hour.Seconds()), cookies[0].MaxAge)
	require.NoError(t, w.Result().Body.Close())
}
