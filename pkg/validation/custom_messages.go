package validation

import (
	"fmt"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
)

func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email is required",
			"email":    "email is not a valid address",
			"max":      fmt.Sprintf("email must be at most %d characters", constants.MaxEmailLength),
		},
		"Phone": {
			"min": "phone number is too short",
			"max": "phone number is too long",
		},
		"Password": {
			"required": "password is required",
			"min":      fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength),
			"max":      fmt.Sprintf("password must be at most %d characters", constants.MaxPasswordLength),
		},
		"NewPassword": {
			"required": "new password is required",
			"min":      fmt.Sprintf("new password must be at least %d characters", constants.MinPasswordLength),
			"max":      fmt.Sprintf("new password must be at most %d characters", constants.MaxPasswordLength),
		},
		"FullName": {
			"required": "full name is required",
			"min":      fmt.Sprintf("full name must be at least %d characters", constants.MinNameLength),
			"max":      fmt.Sprintf("full name must be at most %d characters", constants.MaxNameLength),
		},
		"Code": {
			"required": "verification code is required",
			"len":      fmt.Sprintf("verification code must be %d digits", constants.VerificationCodeLength),
			"numeric":  "verification code must be numeric",
		},
		"RefreshToken": {
			"required": "refresh token is required",
		},
		"Token": {
			"required": "reset token is required",
		},
	}
	return customValidationMessages[field]
}
