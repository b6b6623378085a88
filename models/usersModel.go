package models

import (
	"time"
)

// Roles a profile can carry. Exactly one admin (the doctor) is expected to
// exist; everyone else is a patient.
const (
	RolePatient = "user"
	RoleDoctor  = "admin"
)

// UserProfile represents an account in the user directory. The ID comes from
// the identity provider and is stable across sessions.
type UserProfile struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Email     string    `gorm:"size:255;unique;index;column:email" json:"email"`
	Password  string    `gorm:"size:255;not null;column:password" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'user';check:role IN ('user', 'admin');column:role" json:"role"`
	Name      string    `gorm:"size:100;column:name" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (UserProfile) TableName() string {
	return "users"
}

// IsDoctor reports whether the profile carries the single doctor role.
func (u *UserProfile) IsDoctor() bool {
	return u.Role == RoleDoctor
}
