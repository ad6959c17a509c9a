// Package validation holds input validation rules shared by the service layer.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minGroupNameLen   = 2
	maxGroupNameLen   = 120
	maxCheckinContent = 4096
)

var reservedGroupNames = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"leaderboard": {},
	"metrics":     {},
	"ws":          {},
}

// ValidateGroupName validates a group name after trimming whitespace.
func ValidateGroupName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minGroupNameLen {
		return fmt.Errorf("group name must be at least %d characters", minGroupNameLen)
	}
	if n > maxGroupNameLen {
		return fmt.Errorf("group name must be at most %d characters", maxGroupNameLen)
	}
	if _, exists := reservedGroupNames[strings.ToLower(name)]; exists {
		return fmt.Errorf("group name is reserved")
	}
	return nil
}

// ValidateCheckinContent validates the body of a check-in.
func ValidateCheckinContent(content string) error {
	if content == "" {
		return fmt.Errorf("content is required")
	}
	if len(content) > maxCheckinContent {
		return fmt.Errorf("content must be at most %d bytes", maxCheckinContent)
	}
	return nil
}
