package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/service"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

// AdminHandler exposes the administrative account operations. Every
// route behind it requires the administrator role.
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

func pathUserID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid user id", nil))
		return 0, false
	}
	return uint(id), true
}

// ListUsers returns a page of accounts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "ListUsers")

	params := constants.ParsePaginationParams(c)
	users, total, err := h.users.ListUsers(ctx, params.Limit, params.Offset)
	if err != nil {
		logger.ErrorWithContext(ctx, "User listing failed").
			Err(err).
			Log()
		respondError(c, "Could not list users", err)
		return
	}

	pageTotal := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	c.JSON(http.StatusOK, constants.BuildListResponse(users, total, params.Page, pageTotal))
}

// ActivateUser re-enables a deactivated account.
func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true, "User activated")
}

// DeactivateUser disables an account and revokes its sessions.
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, "User deactivated")
}

func (h *AdminHandler) setActive(c *gin.Context, active bool, message string) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "SetUserActive")

	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	if err := h.users.SetUserActive(ctx, userID, active); err != nil {
		logger.WarnWithContext(ctx, "Active flag change failed").
			Uint("target_user_id", userID).
			Err(err).
			Log()
		respondError(c, "Could not update user", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(message))
}

// DeleteUser removes an account. The final administrator is protected.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "DeleteUser")

	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(ctx, userID); err != nil {
		logger.WarnWithContext(ctx, "User deletion failed").
			Uint("target_user_id", userID).
			Err(err).
			Log()
		respondError(c, "Could not delete user", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("User deleted"))
}

// ForceLogout revokes every session of the target account.
func (h *AdminHandler) ForceLogout(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "ForceLogout")

	userID, ok := pathUserID(c)
	if !ok {
		return
	}

	if err := h.users.ForceLogout(ctx, userID); err != nil {
		logger.WarnWithContext(ctx, "Forced logout failed").
			Uint("target_user_id", userID).
			Err(err).
			Log()
		respondError(c, "Could not revoke sessions", err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Sessions revoked"))
}
