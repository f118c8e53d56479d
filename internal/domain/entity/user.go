package entity

import (
	"time"
)

// User represents the centralized authentication table
type User struct {
	ID          int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:text;not null" json:"-"`
	Role        Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone       *string    `gorm:"type:varchar(50)" json:"phone,omitempty"`
	DateOfBirth *time.Time `gorm:"type:date" json:"dateOfBirth,omitempty"`
	Address     *string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

func (u *User) IsPatient() bool {
	return u.Role == RolePatient
}
