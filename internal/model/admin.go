package model

import "time"

// AdminLoginRequest exchanges the admin password for a session token.
type AdminLoginRequest struct {
	Password string `json:"password" binding:"required,max=128"`
}

// AdminLoginResponse is returned after successful admin login.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
