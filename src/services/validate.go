package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/theleywin/Backend-Twitter-Clone/src/lib"
	"github.com/theleywin/Backend-Twitter-Clone/src/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return lib.Validation(fmt.Sprintf("%q length must be between %d and %d characters.", field, min, max))
	}
	return nil
}

func validateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return lib.Validation(fmt.Sprintf("%q is not allowed to be empty.", field))
	}
	return validateLength(field, text, models.MinTextLength, models.MaxTextLength)
}

func validateEmail(email string) error {
	if err := validateLength("email", email, 5, 255); err != nil {
		return err
	}
	if !emailPattern.MatchString(email) {
		return lib.Validation(`"email" must be a valid email.`)
	}
	return nil
}

// splitTags turns the whitespace separated tags field into tokens.
func splitTags(tags string) ([]string, error) {
	if utf8.RuneCountInString(tags) > models.MaxTagsLength {
		return nil, lib.Validation(fmt.Sprintf(`"tags" length must be at most %d characters.`, models.MaxTagsLength))
	}
	return strings.Fields(tags), nil
}
