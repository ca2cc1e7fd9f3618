package utils

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail describes a single failed field.
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var phonePattern = regexp.MustCompile(`^09\d{9}$`)

// IsValidPhoneNumber reports whether s looks like an Iranian mobile number.
func IsValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// with per-field details and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var details []ValidationErrorDetail

		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				msg := fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", e.Field(), e.Tag())
				if e.Tag() == "required" {
					msg = fmt.Sprintf("Field '%s' is required", e.Field())
				}
				details = append(details, ValidationErrorDetail{Field: e.Field(), Message: msg})
			}
		} else {
			details = append(details, ValidationErrorDetail{
				Field:   "body",
				Message: "Malformed JSON or invalid request body",
			})
		}

		c.JSON(http.StatusBadRequest, Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request parameters",
			Data:    details,
		})
		return false
	}
	return true
}
