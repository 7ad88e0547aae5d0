package filterconfig

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the structure of d. The returned error matches
// panelsearch.ErrInvalidDescriptor and lists every problem found.
func Validate(d Descriptor) error {
	var problems []string
	if err := getValidator().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return errors.WithSecondaryError(panelsearch.ErrInvalidDescriptor, err)
		}
		for _, e := range verrs {
			problems = append(problems, describe(e))
		}
	}

	seen := make(map[string]bool, len(d.FilterGroups))
	for _, g := range d.FilterGroups {
		if g.Key == "" {
			continue
		}
		if seen[g.Key] {
			problems = append(problems, fmt.Sprintf("duplicate filter group %q", g.Key))
		}
		seen[g.Key] = true
		if g.Type == DateRangeGroup && g.Key != panelsearch.KeyDateRange {
			problems = append(problems, fmt.Sprintf("date range group must use key %q, got %q", panelsearch.KeyDateRange, g.Key))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.Wrapf(panelsearch.ErrInvalidDescriptor, "descriptor %q: %s", d.Entity, strings.Join(problems, " and "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("value %q for key %q not recognized, only support %q", e.Value(), e.Field(), e.Param())
	case "required":
		return fmt.Sprintf("%s is required", e.Namespace())
	default:
		return e.Error()
	}
}
