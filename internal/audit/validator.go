package audit

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidCode is returned for input that is not an 8-4-4-4-12 hex code.
var ErrInvalidCode = errors.New("invalid audit code")

// codePattern accepts only the hyphenated textual UUID form; uuid.Parse alone
// would also accept urn:uuid:, braced and unhyphenated forms.
var codePattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidCode reports whether s has the audit code shape. It is purely
// syntactic.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Canonical trims and lowercases raw and returns it in canonical form, or
// ErrInvalidCode.
func Canonical(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !ValidCode(s) {
		return "", ErrInvalidCode
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}
	return id.String(), nil
}
