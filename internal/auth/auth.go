// Package auth provides JWT-based session issuance and verification for
// HTTP requests. A signed token may be presented either as a bearer token
// in the Authorization header or inside the session cookie; both go through
// the same verifier.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/ainotes/internal/logger"
	"github.com/patric-chuzhbe/ainotes/internal/models"
	"github.com/patric-chuzhbe/ainotes/internal/user"
)

type userKeeper interface {
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

// ErrInvalidToken is returned when a token is missing, malformed,
// carries a bad signature or has expired.
var ErrInvalidToken = errors.New("invalid session token")

// Auth issues and verifies session tokens and exposes the HTTP middleware
// that resolves the acting user identity.
type Auth struct {
	// db is the interface to the user data storage.
	db userKeeper

	// cookieName is the name of the cookie used to store the JWT.
	cookieName string

	// signingSecretKey is the key used to sign JWTs.
	signingSecretKey []byte

	// cookieTTL is the validity of the browser-session cookie.
	cookieTTL time.Duration
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the user identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates a new Auth handler with the given user data access layer,
// cookie name, JWT signing secret and cookie lifetime.
func New(
	db userKeeper,
	cookieName string,
	signingSecretKey []byte,
	cookieTTL time.Duration,
) *Auth {
	return &Auth{
		db:               db,
		cookieName:       cookieName,
		signingSecretKey: signingSecretKey,
		cookieTTL:        cookieTTL,
	}
}

// BuildJWTString signs a token embedding the user id and email,
// valid for the given duration from now.
func (a *Auth) BuildJWTString(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies the token signature and expiry and returns
// the embedded user id. Any failure is reported as ErrInvalidToken.
func (a *Auth) GetUserIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecretKey, nil
		},
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// SetSessionCookie attaches the browser-session variant of the credential
// to the response. The cookie lifetime matches the token's own expiry.
func (a *Auth) SetSessionCookie(response http.ResponseWriter, tokenString string) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.cookieName,
			Value:    tokenString,
			Path:     "/",
			MaxAge:   int(a.cookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	)
}

// AuthenticateUser is an HTTP middleware that authenticates incoming requests
// using JWTs found in the Authorization header or the session cookie.
// Requests without a valid token are rejected with 401 before the wrapped
// handler runs; otherwise the user ID is stored in the request context.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
		if tokenString == "" {
			writeUnauthorized(response)
			return
		}

		userID, err := a.GetUserIDFromToken(tokenString)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.GetUserIDFromToken()`: ", zap.Error(err))
			writeUnauthorized(response)
			return
		}

		usr, found, err := a.db.GetUserByID(request.Context(), userID)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.db.GetUserByID()`: ", zap.Error(err))
			writeServerError(response)
			return
		}
		if !found {
			writeUnauthorized(response)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, usr.ID)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext returns the authenticated user id placed into the
// context by AuthenticateUser, or false if the request was not authenticated.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)

	return userID, ok && userID != ""
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	if tokenString != "" {
		return strings.TrimPrefix(tokenString, "Bearer ")
	}
	cookie, err := request.Cookie(a.cookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

func writeUnauthorized(response http.ResponseWriter) {
	writeJSONError(response, http.StatusUnauthorized, "unauthorized")
}

func writeServerError(response http.ResponseWriter) {
	writeJSONError(response, http.StatusInternalServerError, "internal server error")
}

func writeJSONError(response http.ResponseWriter, statusCode int, message string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Error: message})
}
