package medlinkapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

const dateLayout = "2006-01-02"

// timeLayouts форматы времени, которые принимает backend
var timeLayouts = []string{"15:04", "15:04:05"}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, ok := parseClock(fl.Field().String())
		return ok
	})
	return v
}

func parseClock(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// check проверяет структуру запроса и переводит ошибки validator в *ValidationError
func (c *Client) check(req any) error {
	err := c.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Violations: make([]Violation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, Violation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", fe.Field())
	case "email":
		return fmt.Sprintf("field %s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("field %s must be at least %s", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("field %s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", fe.Field(), fe.Param())
	case "date":
		return fmt.Sprintf("field %s must be a date YYYY-MM-DD", fe.Field())
	case "clock":
		return fmt.Sprintf("field %s must be a time HH:MM or HH:MM:SS", fe.Field())
	default:
		return fmt.Sprintf("field %s is not valid", fe.Field())
	}
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Violations: []Violation{{Field: field, Message: msg}}}
}
