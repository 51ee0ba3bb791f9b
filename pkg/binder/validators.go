package binder

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shelfmark/shelfmark/pkg/weburl"
)

// SlugMinLength is the shortest slug a book may carry.
const SlugMinLength = 5

var (
	slugRE  = regexp.MustCompile(`^[a-z0-9-]+$`)
	monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

// customValidators are registered on every Binder under the tags used in
// payload structs.
var customValidators = map[string]validator.Func{
	httpsURL: httpsURLValidator,
	slug:     slugValidator,
	month:    monthValidator,
}

// httpsURLValidator accepts absolute https URLs on a public top-level domain.
func httpsURLValidator(fl validator.FieldLevel) bool {
	return weburl.IsHTTPS(fl.Field().String())
}

// slugValidator ensures the value is lowercase alphanumerics and hyphens and
// at least SlugMinLength long. An empty value passes so that optional slugs
// can be omitted; pair with `required` otherwise.
func slugValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return len(value) >= SlugMinLength && slugRE.MatchString(value)
}

// IsSlug reports whether s is a well-formed, non-empty slug.
func IsSlug(s string) bool {
	return len(s) >= SlugMinLength && slugRE.MatchString(s)
}

// monthValidator ensures the value matches YYYY-MM or is empty.
func monthValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return monthRE.MatchString(value)
}
