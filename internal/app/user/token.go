package user

import "rwchat/internal/pkg/auth/jwt"

// IssueToken signs a session token describing the account as it is now.
func (u *User) IssueToken(secretKey string) (string, error) {
	payload := &jwt.Payload{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
		Name:  u.Name,
	}

	return jwt.GenerateToken(payload, secretKey, jwt.SessionExpiration)
}
