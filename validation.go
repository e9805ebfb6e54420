package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("currency", validateCurrency); err != nil {
		panic(fmt.Sprintf("cannot register the currency validation: %v", err))
	}
}

func validateCurrency(fl validator.FieldLevel) bool {
	return Currency(fl.Field().String()).Valid()
}

// validateStruct runs the struct tag rules on v and turns failures into a *ValidationError
// listing every offending field.
func validateStruct(what string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("cannot validate %s: %w", what, err)
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			reasons = append(reasons, fmt.Sprintf("%s must be one of %s, got %q", fe.Field(), fe.Param(), fe.Value()))
		case "currency":
			reasons = append(reasons, fmt.Sprintf("%s %q is not a supported currency", fe.Field(), fe.Value()))
		default:
			reasons = append(reasons, fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return invalidf("invalid %s: %s", what, strings.Join(reasons, "; "))
}
