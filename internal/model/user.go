package model

import (
	"time"

	"github.com/google/uuid"
)

// User represents a shopper identified by an external chat-platform ID.
// A user row is created on first store selection and never deleted;
// deleting a store only nulls the store reference.
type User struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	ExternalID int64      `json:"externalId" db:"external_id"`
	StoreID    *uuid.UUID `json:"storeId,omitempty" db:"store_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
}
