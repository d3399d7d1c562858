package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MinNameLength = 2
	MaxNameLength = 64
)

var (
	namePattern      = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9_-]*[A-Za-z0-9])?$`)
	tagPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	parameterPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

	reservedNames = map[string]bool{
		"all": true, "none": true, "default": true, "null": true, "undefined": true,
		"suite": true, "suites": true, "config": true, "backup": true, "temp": true,
	}

	secretWords = []string{"password", "passwd", "secret", "token", "key", "credential", "private", "apikey"}
)

// ValidateName checks a suite name and returns its errors and warnings.
func ValidateName(name string) (errs, warnings Issues) {
	if strings.TrimSpace(name) == "" {
		errs.Add("name", "is required")
		return errs, warnings
	}
	if len(name) < MinNameLength || len(name) > MaxNameLength {
		errs.Add("name", fmt.Sprintf("must be between %d and %d characters long", MinNameLength, MaxNameLength), name)
	}
	if !namePattern.MatchString(name) {
		errs.Add("name", "must contain only letters, digits, hyphens and underscores, and start and end with a letter or digit", name)
	}
	if reservedNames[strings.ToLower(name)] {
		errs.Add("name", fmt.Sprintf("'%s' is a reserved name", name), name)
	}
	if name != strings.ToLower(name) {
		warnings.Add("name", "lower-case names are recommended", name)
	}
	return errs, warnings
}

// ValidTag reports whether tag is a syntactically valid tag.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// ValidParameterName reports whether name is a valid environment parameter name.
func ValidParameterName(name string) bool {
	return parameterPattern.MatchString(name)
}

// LooksSecret reports whether a parameter name suggests it holds a secret.
func LooksSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range secretWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// IsReservedName reports whether name is reserved.
func IsReservedName(name string) bool {
	return reservedNames[strings.ToLower(name)]
}
