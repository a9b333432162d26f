package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
	"github.com/rukshanyomal11/farm-management-system/internal/service"
	ctxutil "github.com/rukshanyomal11/farm-management-system/pkg/context"
	"github.com/rukshanyomal11/farm-management-system/pkg/logger"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	users *service.UserService
}

func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me returns the public identity fields of the caller.
func (h *ProfileHandler) Me(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, c.ClientIP(), "handler", "Me")

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("unauthorized", nil))
		return
	}

	profile, err := h.users.GetProfile(ctx, userID)
	if err != nil {
		logger.WarnWithContext(ctx, "Profile lookup failed").
			Uint("user_id", userID).
			Err(err).
			Log()
		respondError(c, "Could not load profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
