// internal/app/system/inputval/inputval.go
// Package inputval validates decoded request DTOs with struct tags.
//
// Fields use `validate` for rules and `label` for the human-readable name
// used in messages:
//
//	type createVehicle struct {
//	    Matricula string `json:"matricula" validate:"required,max=20" label:"Matricula"`
//	}
package inputval

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/apperr"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Message string
}

// Result collects every failed rule in field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns the first failure as a validation error, or nil.
func (r *Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return apperr.Validation(r.First())
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			if j := strings.Split(f.Tag.Get("json"), ",")[0]; j != "" && j != "-" {
				return j
			}
			return f.Name
		})
		must := func(tag string, fn func(string) bool) {
			if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return fn(fl.Field().String())
			}); err != nil {
				panic(err)
			}
		}
		must("objectid", IsValidObjectID)
		must("httpurl", IsValidHTTPURL)
		must("emailaddr", IsValidEmail)
		must("fecha", IsValidDate)
		must("hora", IsValidHour)
	})
	return v
}

// Validate runs the struct rules of s. s must be a struct or a pointer to one.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	numeric := false
	switch fe.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		numeric = true
	}

	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at most %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("%s must contain at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email", "emailaddr":
		return "A valid email address is required."
	case "objectid":
		return label + " must be a valid id."
	case "httpurl":
		return label + " must be an http(s) URL."
	case "hexcolor":
		return label + " must be a hex color such as #1A2B3C."
	case "fecha":
		return label + " must be a date in YYYY-MM-DD format."
	case "hora":
		return label + " must be a time in HH:MM format."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether s is a bare RFC 5322 address.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a 24-char hex ObjectID.
func IsValidObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// IsValidDate reports whether s is a YYYY-MM-DD date.
func IsValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsValidHour reports whether s is an HH:MM time.
func IsValidHour(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
