package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/dto"
	apperrors "github.com/rukshanyomal11/farm-management-system/internal/errors"
	"github.com/rukshanyomal11/farm-management-system/internal/service"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
	"github.com/rukshanyomal11/farm-management-system/pkg/validation"
)

// AuthHandler exposes the credential lifecycle endpoints.
type AuthHandler struct {
	verification *service.VerificationService
	users        *service.UserService
	resets       *service.ResetService
}

func NewAuthHandler(verification *service.VerificationService, users *service.UserService, resets *service.ResetService) *AuthHandler {
	return &AuthHandler{
		verification: verification,
		users:        users,
		resets:       resets,
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request", validation.MessagesFor(err)))
		return false
	}
	return true
}

func respondError(c *gin.Context, message string, err error) {
	c.JSON(apperrors.ToHTTPStatus(err), constants.BuildErrorResponse(message, apperrors.GetErrorMessage(err)))
}

// RequestCode issues a verification code for a new email address.
func (h *AuthHandler) RequestCode(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "RequestCode")

	var req dto.RequestCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verification.RequestCode(ctx, req.Email); err != nil {
		logger.WarnWithContext(ctx, "Verification code request failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, "Could not issue verification code", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Verification code sent"))
}

// VerifyCode checks a submitted verification code.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "VerifyCode")

	var req dto.VerifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verification.CheckCode(ctx, req.Email, req.Code); err != nil {
		logger.WarnWithContext(ctx, "Code verification failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, "Verification failed", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Email verified"))
}

// Register creates a self-service account after email verification.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "Register")

	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// RegisterAdmin creates an administrator account. The deployment
// secret travels in the X-Admin-Secret header.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "RegisterAdmin")

	var req dto.AdminRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	secret := c.GetHeader(constants.HeaderXAdminSecret)
	user, err := h.users.RegisterAdmin(ctx, &req, secret)
	if err != nil {
		logger.WarnWithContext(ctx, "Administrator registration failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login authenticates and issues the token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "Login")

	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	logger.InfoWithContext(ctx, "User login attempt").
		String("email", req.Email).
		Log()

	response, err := h.users.Login(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			String("email", req.Email).
			Err(err).
			Log()
		respondError(c, "Authentication failed", err)
		return
	}

	logger.InfoWithContext(ctx, "User logged in successfully").
		String("email", req.Email).
		Uint("user_id", response.User.ID).
		Log()

	c.JSON(http.StatusOK, response)
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "Refresh")

	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		respondError(c, "Token refresh failed", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout revokes every session of the authenticated user.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "Logout")

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	if err := h.users.Logout(ctx, userID); err != nil {
		logger.ErrorWithContext(ctx, "Logout failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		respondError(c, "Logout failed", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Logged out"))
}

// ForgotPassword starts the reset flow. The response is identical
// whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "ForgotPassword")

	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resets.ForgotPassword(ctx, req.Email, c.ClientIP()); err != nil {
		logger.ErrorWithContext(ctx, "Forgot password processing failed").
			Err(err).
			Log()
		c.JSON(http.StatusInternalServerError, constants.BuildErrorResponse("Could not process request", nil))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("If the email is registered, reset instructions have been sent"))
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resets.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		logger.WarnWithContext(ctx, "Password reset failed").
			Err(err).
			Log()
		respondError(c, "Password reset failed", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password has been reset"))
}
