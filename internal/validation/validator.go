package validation

import (
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^\d{8}$`)
	timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// New returns a validator with the shop's custom tags registered:
// phone8 (exactly eight digits) and hhmm (24h "HH:MM").
// Field names in reported errors follow the json tag.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone8", func(fl validatorv10.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validatorv10.FieldLevel) bool {
		return timeOfDayPattern.MatchString(fl.Field().String())
	})

	return v
}

// IsPhone reports whether phone is exactly eight ASCII digits.
func IsPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Fields flattens validator errors into a field -> message map.
// Nested fields keep their path without the root struct name, e.g. "items[0].quantity".
func Fields(err error) map[string]string {
	out := map[string]string{}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range ve {
		key := fe.Namespace()
		if _, rest, found := strings.Cut(key, "."); found {
			key = rest
		}
		out[key] = message(fe)
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone8":
		return "must be exactly 8 digits"
	case "hhmm":
		return "must be a time in HH:MM format"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
