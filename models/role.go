package models

import "time"

// Role is the access-level master table ("administrator" sees every scan,
// "user" only their own).
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	Users       []User `gorm:"foreignKey:RoleID"`
}
