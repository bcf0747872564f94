package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims issued by the portal's identity provider.
// Tokens follow the Supabase Auth layout: the top-level role separates
// signed-in users from anonymous ones, app_metadata carries the portal role.
type Claims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	SessionID            string                 `json:"session_id"`
	IsAnonymous          bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// PortalRole returns app_metadata.role, or "" when it is absent or not a string
func (c *Claims) PortalRole() string {
	role, _ := c.AppMetadata["role"].(string)
	return role
}
