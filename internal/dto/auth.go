package dto

// RequestCodeRequest asks for a verification code for an address that is
// not yet registered.
type RequestCodeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,min=10,max=15"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	FarmName string `json:"farm_name" binding:"omitempty,max=100"`
}

// AdminRegisterRequest is the privileged registration path. The shared
// deployment secret travels in the X-Admin-Secret header, not the body.
type AdminRegisterRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Phone    string `json:"phone" binding:"omitempty,min=10,max=15"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`

	// Client metadata captured by the handler, never from the body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // access token expiry in seconds
	User         UserResponse `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse carries a fresh access token only; refresh tokens are
// not rotated.
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`

	IPAddress string `json:"-"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=100"`
}
