package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct はvalidateタグに沿って検証し、最初の違反を
// 人が読めるメッセージで返す。違反が無ければnil。
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "max":
		return fmt.Errorf("%s too long", field)
	case "min":
		return fmt.Errorf("%s too short", field)
	case "gt":
		return fmt.Errorf("%s must be positive", field)
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
