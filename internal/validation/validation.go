// Package validation wraps go-playground/validator and turns its errors
// into per-field messages the forms can show inline.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"casr-tracker/internal/models"
)

var (
	casrPartPattern     = regexp.MustCompile(`^CASR (Part )?\d{1,3}[A-Z]?$`)
	registrationPattern = regexp.MustCompile(`^[A-Z0-9]{1,2}-[A-Z0-9]{2,5}$`)
)

// FieldErrors maps a field path such as "tasks[0].title" to its message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors unwraps FieldErrors from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var customTags = map[string]validator.Func{
	"isodate": func(fl validator.FieldLevel) bool {
		_, _, err := models.ParseDate(fl.Field().String())
		return err == nil
	},
	"casrpart": func(fl validator.FieldLevel) bool {
		return casrPartPattern.MatchString(fl.Field().String())
	},
	"registration": func(fl validator.FieldLevel) bool {
		return registrationPattern.MatchString(fl.Field().String())
	},
}

func registerTags(v *validator.Validate, tags map[string]validator.Func) error {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q: %w", tag, err)
		}
	}
	return nil
}

type Validator struct {
	v *validator.Validate
}

// New panics if a custom tag cannot be registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := registerTags(v, customTags); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(projectDates, models.Project{})
	v.RegisterStructValidation(taskDates, models.Task{})
	return &Validator{v: v}
}

// Struct validates s and returns FieldErrors, or nil.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := FieldErrors{}
	for _, e := range verrs {
		fe[fieldPath(e.Namespace())] = message(e)
	}
	return fe
}

func projectDates(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.Project)
	checkOrder(sl, p.StartDate, p.EndDate, p.EndDate, "endDate", "EndDate")
}

func taskDates(sl validator.StructLevel) {
	t := sl.Current().Interface().(models.Task)
	checkOrder(sl, t.StartDate, t.DueDate, t.DueDate, "dueDate", "DueDate")
}

func checkOrder(sl validator.StructLevel, start, end string, value any, field, structField string) {
	s, okS, errS := models.ParseDate(start)
	e, okE, errE := models.ParseDate(end)
	if errS != nil || errE != nil || !okS || !okE {
		return
	}
	if e.Before(s) {
		sl.ReportError(value, field, structField, "afterstart", "")
	}
}

// fieldPath drops the root struct name from a namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", e.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), "'", "")
	case "isodate":
		return "must be a date (YYYY-MM-DD)"
	case "casrpart":
		return "must look like \"CASR 121\""
	case "registration":
		return "must be an aircraft registration such as PK-GFA"
	case "afterstart":
		return "must not be before the start date"
	}
	return "is invalid"
}
