package model

import "github.com/google/uuid"

// Admin roles. A master admin has implicit access to every store;
// a store admin is scoped to exactly one.
const (
	RoleMaster = "master"
	RoleStore  = "store"
)

// Admin represents an administrator account. PasswordHash is a bcrypt
// hash and is never serialised.
type Admin struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Login        string     `json:"login" db:"login"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	StoreID      *uuid.UUID `json:"storeId,omitempty" db:"store_id"`
}

// AdminRequest represents the request payload for creating an admin account.
type AdminRequest struct {
	Login    string     `json:"login"`
	Password string     `json:"password"`
	Role     string     `json:"role"`
	StoreID  *uuid.UUID `json:"storeId,omitempty"`
}

// LoginRequest represents the admin login payload.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	Token   string     `json:"token"`
	Role    string     `json:"role"`
	StoreID *uuid.UUID `json:"storeId,omitempty"`
}
