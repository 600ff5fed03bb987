package users

import (
	"regexp"
	"strings"
	"time"

	"github.com/lezionipari/coursecore/internal/apperr"
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z]+(([',. \-][a-zA-Z ])?[a-zA-Z]*)*$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

// Birthdates are accepted day-first, with ISO as a fallback.
var birthdateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02",
}

func validateRegistration(reg Registration) error {
	if !roleValid(reg.Role) {
		return apperr.Validation("please select a user type")
	}
	if !namePattern.MatchString(reg.Name) {
		return apperr.Validation("please type a valid name")
	}
	if !namePattern.MatchString(reg.Surname) {
		return apperr.Validation("please type a valid surname")
	}
	if !passwordValid(reg.Password) {
		return apperr.Validation("please type a valid password")
	}
	if !emailPattern.MatchString(reg.Email) {
		return apperr.Validation("please type a valid email address")
	}
	if !birthdateValid(reg.Birthdate) {
		return apperr.Validation("please type a valid birthdate")
	}
	return nil
}

func roleValid(role string) bool {
	return role == "Teacher" || role == "Student"
}

// passwordValid enforces the historical policy: 8 to 20 characters with at
// least one digit, one lowercase letter and one special character.
func passwordValid(password string) bool {
	if len(password) < 8 || len(password) > 20 {
		return false
	}
	var digit, lower, special bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case strings.ContainsRune("@#$%^&+=", r):
			special = true
		}
	}
	return digit && lower && special
}

func birthdateValid(birthdate string) bool {
	for _, layout := range birthdateLayouts {
		if _, err := time.Parse(layout, birthdate); err == nil {
			return true
		}
	}
	return false
}
