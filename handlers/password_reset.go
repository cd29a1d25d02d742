package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type forgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

// ForgotPassword issues a password reset token and emails the reset link.
// The response never reveals whether the email belongs to an account.
func ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Email address is required",
		})
	}

	genericResponse := map[string]string{
		"message": "If an account exists with that email, you will receive a password reset link shortly.",
	}

	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return c.JSON(http.StatusOK, genericResponse)
	}
	if !user.IsActive {
		return c.JSON(http.StatusOK, genericResponse)
	}

	resetToken, err := services.CreatePasswordResetToken(db.DB, user.ID)
	if err != nil {
		// Do not reveal internal failures either
		return c.JSON(http.StatusOK, genericResponse)
	}

	cfg := c.Get("config").(*config.Config)

	baseURL := cfg.AppURL
	if baseURL == "" {
		baseURL = c.Scheme() + "://" + c.Request().Host
	}
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", baseURL, resetToken.Token)
	expiresAt := resetToken.ExpiresAt.Format("January 2, 2006 at 3:04 PM MST")

	emailMsg := services.BuildPasswordResetEmail(user.Email, user.Name, resetLink, expiresAt)
	services.SendEmailAsync(cfg, emailMsg)

	services.LogSecurityEvent(db.DB, "PASSWORD_RESET_REQUESTED", user.ID, "Password reset requested from "+c.RealIP())

	return c.JSON(http.StatusOK, genericResponse)
}

// ResetPassword consumes a reset token and sets a new password.
// All existing sessions for the user are revoked.
func ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Token == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Token and password are required",
		})
	}

	resetToken, err := services.ValidatePasswordResetToken(db.DB, req.Token)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if err := services.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	hashedPassword, err := services.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process password")
	}

	updates := map[string]interface{}{
		"password":              hashedPassword,
		"failed_login_attempts": 0,
		"lockout_until":         nil,
	}
	if err := db.DB.Model(&models.User{}).Where("id = ?", resetToken.UserID).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	if err := services.MarkResetTokenUsed(db.DB, resetToken.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	// Revoke every existing session so a stolen session dies with the old password
	services.DeleteAllUserSessions(db.DB, resetToken.UserID)

	services.LogSecurityEvent(db.DB, "PASSWORD_RESET_COMPLETED", resetToken.UserID, "Password reset completed from "+c.RealIP())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Your password has been reset successfully. Please log in with your new password.",
	})
}
