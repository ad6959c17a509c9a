package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "morning runners", false},
		{"minimum length", "ok", false},
		{"too short", "x", true},
		{"too long", strings.Repeat("a", 121), true},
		{"reserved", "leaderboard", true},
		{"reserved mixed case", "Admin", true},
		{"unicode counted as runes", strings.Repeat("ü", 120), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCheckinContent(t *testing.T) {
	assert.Error(t, ValidateCheckinContent(""))
	assert.NoError(t, ValidateCheckinContent("made it to the gym"))
	assert.Error(t, ValidateCheckinContent(strings.Repeat("a", 4097)))
	assert.NoError(t, ValidateCheckinContent(strings.Repeat("a", 4096)))
}
