package model

import "time"

// Base carries the storage-assigned identifier and the mutation timestamps
// shared by every content record.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Identifier returns the record id.
func (b *Base) Identifier() uint {
	return b.ID
}

// Stamp prepares a record for insertion: the id is left for the database to
// assign and both timestamps are set to now.
func (b *Base) Stamp(now time.Time) {
	b.ID = 0
	b.CreatedAt = now
	b.UpdatedAt = now
}
