package model

import "time"

type UserRole string

const (
	Reviewer UserRole = "reviewer"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name        string    `gorm:"size:100;not null" json:"name"`
	Email       string    `gorm:"size:100;unique;not null" json:"email"`
	Password    string    `gorm:"size:100;not null" json:"-"`
	Role        UserRole  `gorm:"size:20;default:'reviewer'" json:"role"`
	Affiliation string    `gorm:"size:200" json:"affiliation"`
	Disabled    bool      `gorm:"default:false" json:"disabled"`
	LastLogin   time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
