package models

import "github.com/golang-jwt/jwt/v5"

// UserRole labels the authenticated caller's access level. Tokens are issued by
// the external identity service; this API only verifies them.
type UserRole string

// Recognised roles.
const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// JWTClaims are the custom claims carried by access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
