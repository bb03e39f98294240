package chi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator checks request bodies against their validate tags.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() (*requestValidator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(useJSONFieldNames)
	if err := v.RegisterValidation("not_blank", isNotBlank); err != nil {
		return nil, fmt.Errorf("register not_blank validator: %w", err)
	}
	return &requestValidator{validate: v}, nil
}

// Validate returns a client-facing message for the first failed rule.
func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "not_blank":
		return fmt.Errorf("missing required field '%s'", fe.Namespace())
	case "min", "max", "gt":
		return fmt.Errorf("value or length of field '%s' is not in the expected range", fe.Namespace())
	case "excludesall":
		return fmt.Errorf("field '%s' contains forbidden characters", fe.Namespace())
	default:
		return fmt.Errorf("field '%s' is invalid", fe.Namespace())
	}
}

func useJSONFieldNames(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func isNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
