// internal/models/license_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLicenseExpiresAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	license := &License{StartTime: start, DurationSecs: 3600}

	assert.Equal(t, start.Add(time.Hour), license.ExpiresAt())
}

func TestLicenseExpiredAt(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		license License
		now     time.Time
		expired bool
	}{
		{
			name:    "active within term",
			license: License{StartTime: start, DurationSecs: 3600, Active: true},
			now:     start.Add(30 * time.Minute),
			expired: false,
		},
		{
			name:    "active exactly at expiry instant",
			license: License{StartTime: start, DurationSecs: 3600, Active: true},
			now:     start.Add(time.Hour),
			expired: false,
		},
		{
			name:    "active past expiry",
			license: License{StartTime: start, DurationSecs: 3600, Active: true},
			now:     start.Add(time.Hour + time.Second),
			expired: true,
		},
		{
			name:    "inactive counts as expired even inside term",
			license: License{StartTime: start, DurationSecs: 3600, Active: false},
			now:     start.Add(time.Minute),
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.license.ExpiredAt(tt.now))
		})
	}
}
