// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	BaseModel
	Username     string        `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string        `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string        `json:"-" gorm:"size:255;not null"`
	Role         Role          `json:"role" gorm:"type:varchar(20);not null;default:'none'"`
	Status       AccountStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	// Balance is held in integer currency units. All value movement between
	// accounts happens through the ledger store so that sums are conserved.
	Balance     int64      `json:"balance" gorm:"not null;default:0"`
	Treasury    bool       `json:"treasury" gorm:"not null;default:false"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
}

// HasCapability reports whether the account holds at least the given role.
// Admin implies moderator.
func (a *Account) HasCapability(role Role) bool {
	switch role {
	case RoleNone:
		return true
	case RoleModerator:
		return a.Role == RoleModerator || a.Role == RoleAdmin
	case RoleAdmin:
		return a.Role == RoleAdmin
	}
	return false
}
