package middleware

import (
	"net/http"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "talent_flow_session"
	// ContextKeyUser is the context key for the authenticated user
	ContextKeyUser = "user"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

// RequireAuth is middleware that requires a valid session cookie
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			session, err := services.ValidateSession(db.DB, cookie.Value)
			if err != nil {
				// Invalid or expired session, clear cookie
				ClearSessionCookie(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired or invalid")
			}

			if !session.User.IsActive {
				ClearSessionCookie(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "Account is deactivated")
			}

			// Store user and session in context
			c.Set(ContextKeyUser, &session.User)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetCurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			hasRole := false
			for _, role := range roles {
				if user.Role == role {
					hasRole = true
					break
				}
			}

			if !hasRole {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}

// GetCurrentUser retrieves the current user from context
func GetCurrentUser(c echo.Context) *models.User {
	user, ok := c.Get(ContextKeyUser).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetCurrentSession retrieves the current session from context
func GetCurrentSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	var isProduction bool
	if cfg, ok := c.Get("config").(*config.Config); ok {
		isProduction = cfg.Environment == "production"
	}

	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)
}

// CanAccessUser checks if the current user can access another user's data
func CanAccessUser(c echo.Context, targetUserID string) bool {
	currentUser := GetCurrentUser(c)
	if currentUser == nil {
		return false
	}

	// Admins can access all users
	if currentUser.IsAdmin() {
		return true
	}

	// Users can always access their own data
	return currentUser.ID == targetUserID
}

// CanModifyUser checks if the current user can modify another user's data
func CanModifyUser(c echo.Context, targetUserID string) bool {
	currentUser := GetCurrentUser(c)
	if currentUser == nil {
		return false
	}

	// Only admins can modify other users
	if currentUser.IsAdmin() {
		return true
	}

	// Users can modify their own profile
	return currentUser.ID == targetUserID
}
