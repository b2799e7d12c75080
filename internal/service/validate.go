package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
)

var validate = newValidator()

// newValidator reports fields by their json names so errors read the same
// as the request payload.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and converts the first failure into a
// ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fieldPath(fe), Message: fieldMessage(fe)}
}

// fieldPath drops the struct name from the namespace: "guest.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// parseStay parses and checks a check-in/check-out pair against today.
func parseStay(checkIn, checkOut string, today time.Time, inField, outField string) (calendar.Range, error) {
	start, err := calendar.ParseDate(strings.TrimSpace(checkIn))
	if err != nil {
		return calendar.Range{}, invalid(inField, "must be a date in YYYY-MM-DD format")
	}
	end, err := calendar.ParseDate(strings.TrimSpace(checkOut))
	if err != nil {
		return calendar.Range{}, invalid(outField, "must be a date in YYYY-MM-DD format")
	}
	if start.Before(calendar.Day(today)) {
		return calendar.Range{}, invalid(inField, "cannot be in the past")
	}
	stay, err := calendar.NewRange(start, end)
	if err != nil {
		return calendar.Range{}, invalid(outField, "must be after check-in date")
	}
	if stay.Nights() > maxStayNights {
		return calendar.Range{}, invalid(outField, "stay cannot exceed %d nights", maxStayNights)
	}
	return stay, nil
}

func validateParty(adults, children int, adultsField, childrenField string) error {
	if adults < 1 {
		return invalid(adultsField, "must be at least 1")
	}
	if children < 0 {
		return invalid(childrenField, "cannot be negative")
	}
	return nil
}
