package constants

// Application Information
const (
	AppName    = "Farm Management Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Identity Roles
const (
	RoleOwner         = "owner"
	RoleManager       = "manager"
	RoleWorker        = "worker"
	RoleViewer        = "viewer"
	RoleAdministrator = "administrator"
)

// ValidRoles lists every role an identity may carry.
var ValidRoles = []string{RoleOwner, RoleManager, RoleWorker, RoleViewer, RoleAdministrator}

// Cache Key Prefixes
const (
	CacheKeyPrefix  = "farm:"
	CacheKeyProfile = CacheKeyPrefix + "profile:"
)

// Mail Template Kinds
const (
	MailTemplateVerificationCode = "verification_code"
	MailTemplateWelcome          = "welcome"
	MailTemplatePasswordReset    = "password_reset"
)
