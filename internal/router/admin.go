package router

import (
	"github.com/gin-gonic/gin"

	"github.com/rukshanyomal11/farm-management-system/internal/constants"
)

func (r *Router) adminRoutes(version *gin.RouterGroup) {
	admin := version.Group("/admin")
	admin.Use(r.jwtMw.RequireAuth())
	admin.Use(r.jwtMw.RequireRole(constants.RoleAdministrator))
	{
		admin.GET("/users", r.adminHandler.ListUsers)
		admin.POST("/users/:id/activate", r.adminHandler.ActivateUser)
		admin.POST("/users/:id/deactivate", r.adminHandler.DeactivateUser)
		admin.DELETE("/users/:id", r.adminHandler.DeleteUser)
		admin.DELETE("/users/:id/sessions", r.adminHandler.ForceLogout)
	}
}
