package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxScenarioNameLength        = 200
	MaxScenarioDescriptionLength = 2000
)

var (
	// UsernameRegex validates login names
	UsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// ValidateUsername validates username
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return fmt.Errorf("username is too long (max 50 characters)")
	}
	if !UsernameRegex.MatchString(username) {
		return fmt.Errorf("username contains invalid characters (only letters, numbers, _, -, . allowed)")
	}
	return nil
}

// ValidateRole accepts the empty role (caller applies the default) or a known role.
func ValidateRole(role string) error {
	switch role {
	case "", "engineer", "admin":
		return nil
	}
	return fmt.Errorf("invalid role %q (must be engineer or admin)", role)
}

// ValidateScenarioID validates a scenario identifier
func ValidateScenarioID(id string) error {
	if id == "" {
		return fmt.Errorf("scenario ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid scenario ID format")
	}
	return nil
}

// ValidateScenarioName validates scenario name
func ValidateScenarioName(name string) error {
	if err := ValidateNonEmptyString(name, "scenario name"); err != nil {
		return err
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("scenario name contains invalid characters")
	}
	return ValidateStringLength(strings.TrimSpace(name), 1, MaxScenarioNameLength, "scenario name")
}

// ValidateScenarioDescription validates the optional free-text description
func ValidateScenarioDescription(description string) error {
	if !utf8.ValidString(description) {
		return fmt.Errorf("description contains invalid characters")
	}
	return ValidateStringLength(description, 0, MaxScenarioDescriptionLength, "description")
}

// ValidateRecommendationIndex checks idx against a list of n recommendations
func ValidateRecommendationIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("recommendation index %d out of range (scenario has %d)", idx, n)
	}
	return nil
}

// ValidateNonEmptyString validates that string is not empty after trimming
func ValidateNonEmptyString(s, fieldName string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateStringLength validates string length
func ValidateStringLength(s string, min, max int, fieldName string) error {
	length := utf8.RuneCountInString(s)
	if length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if length > max {
		return fmt.Errorf("%s is too long (max %d characters)", fieldName, max)
	}
	return nil
}
