package models

import "time"

// Group is a check-in group. The engine owns the Score field; name and
// identity are managed by the ordinary CRUD surface.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"group_id"`
	Name      string    `gorm:"size:120;not null;uniqueIndex" json:"group_name"`
	Score     float64   `gorm:"not null;default:0" json:"score"`
	CreatedAt time.Time `json:"created_time"`
}

// TableName specifies the table name for GORM.
func (Group) TableName() string {
	return "groups"
}
