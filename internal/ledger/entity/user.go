package entity

import "time"

// User is an application account. Role gates what the account may mutate.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	Username     string `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Name         string `json:"name" gorm:"size:100"`
	PasswordHash string `json:"-" gorm:"size:100;not null"`
	Role         string `json:"role" gorm:"size:20;not null;default:viewer"`
	Status       string `json:"status" gorm:"size:20;default:active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Roles.
const (
	RoleManager    = "manager"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
	RoleInventory  = "inventory"
)

// User states.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
