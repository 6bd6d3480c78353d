package controllers

import (
	"context"
	"net/http"

	"pragatipath-be/middlewares"
	"pragatipath-be/services"
	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthFlow is the account side of the API.
type AuthFlow interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	LoginWithPassword(ctx context.Context, mobile, password string) (*services.AuthResult, error)
	RequestOtp(ctx context.Context, mobile string) (string, error)
	VerifyOtp(ctx context.Context, mobile, code string) (*services.AuthResult, error)
}

type AuthController struct {
	auth   AuthFlow
	logger *zap.Logger
}

func NewAuthController(auth AuthFlow, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// RegisterUser handles user registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"max=100"`
		Email    string `json:"email" binding:"omitempty,email"`
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, ac.logger, utils.BadRequest(err.Error()))
		return
	}

	result, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Mobile:   input.Mobile,
		Password: input.Password,
	})
	if err != nil {
		utils.RespondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

// LoginUser handles password login
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Mobile   string `json:"mobile"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, ac.logger, utils.BadRequest(err.Error()))
		return
	}

	result, err := ac.auth.LoginWithPassword(c.Request.Context(), input.Mobile, input.Password)
	if err != nil {
		utils.RespondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// SendOtp issues a one-time code for the given mobile number.
func (ac *AuthController) SendOtp(c *gin.Context) {
	var input struct {
		Mobile string `json:"mobile"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, ac.logger, utils.BadRequest(err.Error()))
		return
	}

	mobile, err := ac.auth.RequestOtp(c.Request.Context(), input.Mobile)
	if err != nil {
		utils.RespondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP sent successfully.",
		"mobile":  mobile,
	})
}

// VerifyOtp consumes a one-time code and logs the user in.
func (ac *AuthController) VerifyOtp(c *gin.Context) {
	var input struct {
		Mobile string `json:"mobile"`
		OTP    string `json:"otp"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, ac.logger, utils.BadRequest(err.Error()))
		return
	}

	result, err := ac.auth.VerifyOtp(c.Request.Context(), input.Mobile, input.OTP)
	if err != nil {
		utils.RespondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "OTP verified successfully.",
		"token":   result.Token,
		"user":    result.User,
	})
}

// GetMe returns the identity resolved by the auth middleware.
func (ac *AuthController) GetMe(c *gin.Context) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.RespondError(c, ac.logger, utils.Unauthorized("Access denied. No token provided."))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": identity})
}
