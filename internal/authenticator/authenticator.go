// Package authenticator declares the middleware contract the router expects
// from the auth layer.
package authenticator

import "net/http"

// Authenticator resolves the acting user identity for protected routes.
type Authenticator interface {
	AuthenticateUser(h http.Handler) http.Handler
}
