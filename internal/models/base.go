package models

import "time"

// Base contains common columns for all tables. Deletes are hard deletes:
// a closed position and its lots are removed outright so a later buy of
// the same symbol creates a fresh row identity.
type Base struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
