package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex;size:191"`
	// Empty for social-only accounts.
	Password string `json:"-"`
	Role     string `json:"role" gorm:"size:16;default:customer"`

	Provider   *string `json:"provider,omitempty" gorm:"uniqueIndex:idx_provider_identity;size:32"`
	ProviderID *string `json:"-" gorm:"uniqueIndex:idx_provider_identity;size:191"`

	AccountActivated       bool       `json:"accountActivated"`
	AccountActivationToken string     `json:"-"`
	PasswordChangedAt      *time.Time `json:"-"`

	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`

	PasswordResetToken  string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
