package models

import (
	"time"
)

// Roles issued by the identity provider.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the read-only view of an account owned by the identity service.
// The ID matches the "sub" claim of the caller's access token.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(50)" json:"name"`
	Email     string    `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
