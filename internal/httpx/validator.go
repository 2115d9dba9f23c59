package httpx

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	_ = validate.RegisterValidation("condition", validateCondition)
	_ = validate.RegisterValidation("finish", validateFinish)
}

func validateCondition(fl validator.FieldLevel) bool {
	switch strings.ToUpper(fl.Field().String()) {
	case "NM", "LP", "MP", "HP", "DMG":
		return true
	}
	return false
}

func validateFinish(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "nonfoil", "foil", "etched":
		return true
	}
	return false
}

// ValidateStruct runs tag validation on a request struct and converts
// failures into response error details.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := fieldErr.Field()
		param := fieldErr.Param()

		var message string
		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "gte":
			message = fmt.Sprintf("%s must be >= %s", field, param)
		case "lte":
			message = fmt.Sprintf("%s must be <= %s", field, param)
		case "condition":
			message = fmt.Sprintf("%s must be one of NM, LP, MP, HP, DMG", field)
		case "finish":
			message = fmt.Sprintf("%s must be one of nonfoil, foil, etched", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", field, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}

	return details
}
