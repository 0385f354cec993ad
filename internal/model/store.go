package model

import "github.com/google/uuid"

// Store represents a physical store participating in the loyalty programme.
// The (city, address, name) triple is unique.
type Store struct {
	ID      uuid.UUID `json:"id" db:"id"`
	City    string    `json:"city" db:"city"`
	Address string    `json:"address" db:"address"`
	Name    string    `json:"name" db:"name"`
}

// StoreRequest represents the request payload for creating a store.
type StoreRequest struct {
	City    string `json:"city"`
	Address string `json:"address"`
	Name    string `json:"name"`
}
