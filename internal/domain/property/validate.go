package property

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report wire names (json tags) instead of Go field names.
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

// Validate checks that every column is present and numeric columns are
// non-negative. Category membership is not checked.
func Validate(f *Features) error {
	if f == nil {
		return FieldErrors{{Field: "*", Reason: "record is empty"}}
	}
	err := validatorInstance().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		reason := fe.Tag()
		switch fe.Tag() {
		case "required":
			reason = "field required"
		case "gte":
			reason = "must be greater than or equal to " + fe.Param()
		}
		out = append(out, FieldError{Field: fe.Field(), Reason: reason})
	}
	return out
}
