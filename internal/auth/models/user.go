package models

import "errors"

var ErrNotFound = errors.New("user not found")

// ============================================================
// User Model
// ============================================================

type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	Password    string `json:"-"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// Session is an issued bearer token and the user it belongs to.
type Session struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Login    string `json:"login"`
	IssuedAt string `json:"issued_at"`
}
