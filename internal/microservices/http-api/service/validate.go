package service

import (
	"regexp"
	"strings"
	"time"
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// reservedUsername collides with the /users/me/ route.
const reservedUsername = "me"

func validateSlug(v *ValidationError, slug string) {
	if !slugPattern.MatchString(slug) {
		v.Add("slug", "may contain only letters, digits, hyphens and underscores")
	}
	if len(slug) > 50 {
		v.Add("slug", "must be at most 50 characters")
	}
}

func validateName(v *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		v.Add("name", "must not be blank")
	}
	if len(name) > 256 {
		v.Add("name", "must be at most 256 characters")
	}
}

func validateUsername(v *ValidationError, username string) {
	switch {
	case username == "":
		v.Add("username", "must not be blank")
	case strings.EqualFold(username, reservedUsername):
		v.Add("username", `"me" is reserved`)
	case !usernamePattern.MatchString(username):
		v.Add("username", "may contain only letters, digits and @/./+/-/_")
	case len(username) > 150:
		v.Add("username", "must be at most 150 characters")
	}
}

func validateEmail(v *ValidationError, email string) {
	if email == "" || !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	if len(email) > 254 {
		v.Add("email", "must be at most 254 characters")
	}
}

func validateYear(v *ValidationError, year int, now time.Time) {
	if year > now.Year() {
		v.Add("year", "must not be in the future")
	}
}
