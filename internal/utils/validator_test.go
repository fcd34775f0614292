// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Name    string `validate:"required,min=1"`
	Payment int64  `validate:"required,min=1"`
	Pct     int    `validate:"min=0,max=100"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
	}{
		{"valid", sampleRequest{Name: "asset", Payment: 10, Pct: 50}, false},
		{"missing name", sampleRequest{Payment: 10}, true},
		{"zero payment", sampleRequest{Name: "asset"}, true},
		{"percentage over limit", sampleRequest{Name: "asset", Payment: 10, Pct: 101}, true},
		{"zero percentage allowed", sampleRequest{Name: "asset", Payment: 10, Pct: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Pct: 200})
	assert.Error(t, err)

	verrs := GetValidationErrors(err)
	assert.NotEmpty(t, verrs)

	fields := make(map[string]bool)
	for _, v := range verrs {
		fields[v.Field] = true
		assert.NotEmpty(t, v.Message)
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["payment"])
	assert.True(t, fields["pct"])
}
