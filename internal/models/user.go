package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the caller roles recognised by the API.
type UserRole string

// Recognised roles.
const (
	RoleParticipant UserRole = "PARTICIPANT"
	RoleOrganizer   UserRole = "ORGANIZER"
	RoleAdmin       UserRole = "ADMIN"
)

// JWTClaims is the authenticated-subject context attached to every request.
// Token issuance belongs to the external auth service; this API only
// validates and reads.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
