package apikey

import (
	"time"

	"github.com/google/uuid"
)

// APIKey authorizes access to the scoring endpoints.
type APIKey struct {
	ID        uuid.UUID `json:"id" gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"column:name"`
	Key       string    `json:"key" gorm:"column:key;uniqueIndex"`
	Active    bool      `json:"active" gorm:"column:active"`
	ExpiresAt time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

// IsValid reports whether the key is active and unexpired.
func (k *APIKey) IsValid() bool {
	if !k.Active {
		return false
	}
	if !k.ExpiresAt.IsZero() && time.Now().After(k.ExpiresAt) {
		return false
	}
	return true
}
