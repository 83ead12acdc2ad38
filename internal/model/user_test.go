package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"x", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrEmptyPassword, "ValidatePassword(%q)", tt.password)
		} else {
			assert.NoError(t, err, "ValidatePassword(%q)", tt.password)
		}
	}
}
