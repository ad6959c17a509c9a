// Package models contains data structures for the application's domain models.
package models

import "time"

// User is an account known to the engine. The identity token is issued by the
// external auth collaborator and is immutable once created.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"user_id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
