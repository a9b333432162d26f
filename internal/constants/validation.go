package constants

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MinNameLength     = 2
	MaxNameLength     = 50
	MaxEmailLength    = 255
)

// Verification Code Settings
const (
	VerificationCodeLength = 6
)
