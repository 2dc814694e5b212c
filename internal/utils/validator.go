package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"promptvault-backend/pkg/template"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail represents the structure of a single validation error.
type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected"`
	Received interface{} `json:"received"`
}

// ValidationErrorData represents the data field in the validation error response.
type ValidationErrorData struct {
	Errors        []ValidationErrorDetail `json:"errors"`
	Documentation string                  `json:"documentation"`
}

const DocumentationLink = "/swagger/index.html"

var registerOnce sync.Once

// RegisterValidators teaches gin's validator the varname rule and makes it
// report JSON field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			ConfigureValidator(v)
		}
	})
}

// ConfigureValidator applies the project rules to v.
func ConfigureValidator(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonTagName)
	_ = v.RegisterValidation("varname", func(fl validator.FieldLevel) bool {
		return template.IsValidName(fl.Field().String())
	})
}

func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// BindAndValidate binds the request body to the given object and validates it.
// If validation fails, it sends a formatted error response and returns false.
// If validation succeeds, it returns true.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request parameters",
			Data: ValidationErrorData{
				Errors:        ValidationDetails(err),
				Documentation: DocumentationLink,
			},
		})
		return false
	}
	return true
}

// ValidationDetails converts a binding or validation error into response
// details.
func ValidationDetails(err error) []ValidationErrorDetail {
	var validationErrors []ValidationErrorDetail

	var errs validator.ValidationErrors
	var jsonErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &errs):
		for _, e := range errs {
			detail := ValidationErrorDetail{
				Field:    e.Field(),
				Message:  fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag()),
				Expected: e.Param(),
				Received: e.Value(),
			}

			if detail.Expected == "" {
				detail.Expected = e.Tag()
			}

			// Customize messages based on tag
			switch e.Tag() {
			case "required":
				detail.Message = fmt.Sprintf("Field '%s' is required", e.Field())
				detail.Expected = "not null"
			case "min":
				detail.Message = fmt.Sprintf("Field '%s' must be at least %s characters long", e.Field(), e.Param())
				detail.Expected = fmt.Sprintf("min length %s", e.Param())
			case "max":
				detail.Message = fmt.Sprintf("Field '%s' must be at most %s characters long", e.Field(), e.Param())
				detail.Expected = fmt.Sprintf("max length %s", e.Param())
			case "oneof":
				detail.Message = fmt.Sprintf("Field '%s' must be one of [%s]", e.Field(), e.Param())
				detail.Expected = "one of " + e.Param()
			case "varname":
				detail.Message = fmt.Sprintf("Field '%s' must be a variable name", e.Field())
				detail.Expected = "[a-zA-Z_][a-zA-Z0-9_]*"
			}

			validationErrors = append(validationErrors, detail)
		}
	case errors.As(err, &jsonErr):
		// Handle JSON type mismatch errors
		validationErrors = append(validationErrors, ValidationErrorDetail{
			Field:    jsonErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", jsonErr.Field),
			Expected: jsonErr.Type.String(),
			Received: jsonErr.Value,
		})
	default:
		// Handle other errors (e.g., malformed JSON)
		validationErrors = append(validationErrors, ValidationErrorDetail{
			Field:    "body",
			Message:  "Malformed JSON or invalid request body",
			Expected: "valid JSON",
			Received: "invalid",
		})
	}

	return validationErrors
}
