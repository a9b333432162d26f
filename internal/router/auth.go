package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/request-code", r.authHandler.RequestCode)
		auth.POST("/verify-code", r.authHandler.VerifyCode)
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/register-admin", r.authHandler.RegisterAdmin)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
		auth.POST("/forgot-password", r.authHandler.ForgotPassword)
		auth.POST("/reset-password", r.authHandler.ResetPassword)

		// Protected routes (JWT authentication required)
		protected := auth.Group("")
		protected.Use(r.jwtMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
		}
	}
}

func (r *Router) profileRoutes(version *gin.RouterGroup) {
	me := version.Group("/me")
	me.Use(r.jwtMw.RequireAuth())
	{
		me.GET("", r.profileHandler.Me)
	}
}
