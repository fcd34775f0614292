// internal/models/account_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountPassword(t *testing.T) {
	account := &Account{}
	assert.NoError(t, account.SetPassword("correct horse battery staple"))
	assert.NotEmpty(t, account.PasswordHash)
	assert.NotEqual(t, "correct horse battery staple", account.PasswordHash)

	assert.NoError(t, account.CheckPassword("correct horse battery staple"))
	assert.Error(t, account.CheckPassword("wrong password"))
}

func TestHasCapability(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		expected bool
	}{
		{"anyone has none", RoleNone, RoleNone, true},
		{"plain account lacks moderator", RoleNone, RoleModerator, false},
		{"plain account lacks admin", RoleNone, RoleAdmin, false},
		{"moderator has moderator", RoleModerator, RoleModerator, true},
		{"moderator lacks admin", RoleModerator, RoleAdmin, false},
		{"admin has moderator", RoleAdmin, RoleModerator, true},
		{"admin has admin", RoleAdmin, RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &Account{Role: tt.role}
			assert.Equal(t, tt.expected, account.HasCapability(tt.required))
		})
	}
}
