package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims carried by a session token.
// It is the self-describing bearer credential issued at login, signup and rename.
type Payload struct {
	// StandardClaims embeds Exp, Iat and Iss, used for token validity checks.
	jwt.StandardClaims

	// ID is the identity's unique identifier in the directory.
	ID string `json:"id"`

	// Email is the identity's login email.
	Email string `json:"email"`

	// Role is either "Writer" or "Reader". Connections derive their role from this
	// claim at registration time only.
	Role string `json:"role"`

	// Name is the display name at the time the token was issued.
	Name string `json:"name"`
}
