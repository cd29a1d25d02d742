package handlers

import (
	"net/http"
	"strings"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"
	"time"

	"github.com/labstack/echo/v4"
)

// globalDummyHash is verified against when the email does not match any user,
// so response timing does not reveal account existence.
var globalDummyHash = "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t"

func init() {
	// Generate a real dummy hash at startup to ensure consistent timing
	hash, _ := services.HashPassword("dummy_password_for_timing_mitigation")
	if hash != "" {
		globalDummyHash = hash
	}
}

const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Login authenticates a user and sets the session cookie
func Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := req.Password

	if email == "" || password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Email and password are required",
		})
	}

	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		// Timing attack mitigation: always run a bcrypt comparison
		services.VerifyPassword(globalDummyHash, password)
		if services.Monitor != nil {
			services.Monitor.TrackFailedLogin(c.RealIP())
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid email or password",
		})
	}

	if user.IsLockedOut() {
		services.LogSecurityEvent(db.DB, "LOGIN_LOCKED_ACCOUNT", user.ID, "Login attempt on locked account from "+c.RealIP())
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Account is locked. Try again later.",
		})
	}

	if !services.VerifyPassword(user.Password, password) {
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockoutTime := time.Now().Add(lockoutDuration)
			user.LockoutUntil = &lockoutTime
			user.FailedLoginAttempts = 0
			services.LogSecurityEvent(db.DB, "ACCOUNT_LOCKED", user.ID, "Account locked after repeated failed logins from "+c.RealIP())
		}
		db.DB.Save(&user)

		if services.Monitor != nil {
			services.Monitor.TrackFailedLogin(c.RealIP())
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid email or password",
		})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Your account has been deactivated",
		})
	}

	// Reset failed attempts on success
	if user.FailedLoginAttempts > 0 || user.LockoutUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockoutUntil = nil
	}

	ipAddress := c.RealIP()
	userAgent := c.Request().UserAgent()

	session, err := services.CreateSession(db.DB, user.ID, ipAddress, userAgent)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	cfg := c.Get("config").(*config.Config)
	isProduction := cfg.Environment == "production"

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(services.DefaultSessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	auditCtx := services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "User", user.ID, user.Name, "User logged in", nil, nil)

	now := time.Now()
	user.LastLoginAt = &now
	db.DB.Save(&user)

	user.Password = ""
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// Logout deletes the current session and clears the cookie
func Logout(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		auditCtx := middleware.GetAuditContext(c)
		services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogout, "User", user.ID, user.Name, "User logged out", nil, nil)
	}

	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err == nil {
		services.DeleteSession(db.DB, cookie.Value)
	}

	middleware.ClearSessionCookie(c)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}
