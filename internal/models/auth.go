package models

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role issued; it guards cache maintenance.
const RoleAdmin = "admin"

// AdminClaims are embedded in operator access tokens.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
