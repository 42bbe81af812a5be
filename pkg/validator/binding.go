package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phones = NewPhoneValidator()

// Register installs the custom binding tags on gin's default validator engine.
// Call once at startup, before any handler binds a request.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	return RegisterRules(v)
}

// RegisterRules adds the custom tags to v and reports fields by their JSON name
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return phones.IsValid(fl.Field().String())
		},
		// Only students and tutors may sign themselves up; admins are provisioned
		"self_register_role": func(fl validator.FieldLevel) bool {
			role := fl.Field().String()
			return role == "STUDENT" || role == "TUTOR"
		},
		"user_status": func(fl validator.FieldLevel) bool {
			status := fl.Field().String()
			return status == "active" || status == "banned"
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}
	return nil
}

// Message turns a binding error into a single human readable sentence.
// Errors that are not validation failures (malformed JSON, wrong types) are
// reported as an invalid request body.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "uuid":
		return field + " must be a valid id"
	case "url":
		return field + " must be a valid URL"
	case "phone":
		return field + " must be a valid phone number"
	case "self_register_role":
		return field + " must be STUDENT or TUTOR"
	case "user_status":
		return field + " must be active or banned"
	}
	return field + " is invalid"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
