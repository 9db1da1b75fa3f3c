package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the student login payload.
type LoginRequest struct {
	EnrollmentNo string `json:"enrollment_no" validate:"required"`
	Password     string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and the student profile.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	Student     *Student `json:"student"`
}

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	EnrollmentNo string `json:"enrollment_no"`
	FullName     string `json:"full_name,omitempty"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)
