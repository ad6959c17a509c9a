package models

import "time"

// Post is a single check-in within a group. The author must be a member of
// the group at write time; membership is not re-validated retroactively.
// CreatedAt is server-assigned; ties in timestamp ordering are broken by ID.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"post_id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_time"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}
