package models

import "time"

// Membership maps users to groups and records when they joined. At most one
// row may exist per (user, group) pair; duplicate joins are rejected, not
// silently ignored.
type Membership struct {
	UserID   string    `gorm:"primaryKey;size:64" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	GroupID  uint      `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	JoinedAt time.Time `gorm:"not null" json:"joined_time"`
}

// TableName specifies the table name for GORM.
func (Membership) TableName() string {
	return "memberships"
}
