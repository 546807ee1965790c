package user

import (
	"fmt"
	"regexp"
)

var (
	upperRe  = regexp.MustCompile(`[A-Z]`)
	lowerRe  = regexp.MustCompile(`[a-z]`)
	numberRe = regexp.MustCompile(`[0-9]`)
	symbolRe = regexp.MustCompile(`[\W_]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	switch {
	case len(pw) < 8:
		return fmt.Errorf("%w: must be at least 8 characters long", ErrWeakPassword)
	case len(pw) > 72:
		return fmt.Errorf("%w: must be at most 72 characters long", ErrWeakPassword)
	case !upperRe.MatchString(pw):
		return fmt.Errorf("%w: must include at least one uppercase letter", ErrWeakPassword)
	case !lowerRe.MatchString(pw):
		return fmt.Errorf("%w: must include at least one lowercase letter", ErrWeakPassword)
	case !numberRe.MatchString(pw):
		return fmt.Errorf("%w: must include at least one number", ErrWeakPassword)
	case !symbolRe.MatchString(pw):
		return fmt.Errorf("%w: must include at least one symbol", ErrWeakPassword)
	}
	return nil
}
