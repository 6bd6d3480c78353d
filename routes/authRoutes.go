package routes

import (
	"pragatipath-be/controllers"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, auth *controllers.AuthController, requireAuth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/register", auth.RegisterUser)
		group.POST("/login", auth.LoginUser)
		group.POST("/otp/send", auth.SendOtp)
		group.POST("/otp/verify", auth.VerifyOtp)
		group.GET("/me", requireAuth, auth.GetMe)
	}
}
