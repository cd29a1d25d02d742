package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"talent_flow_app_go/config"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/models"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
)

type createUserRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
	Title    string `json:"title" form:"title"`
	Phone    string `json:"phone" form:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// countOtherActiveAdmins returns how many active admins exist besides the given user
func countOtherActiveAdmins(excludeUserID string) int64 {
	var count int64
	db.DB.Model(&models.User{}).
		Where("role = ? AND is_active = ? AND id != ?", models.RoleAdmin, true, excludeUserID).
		Count(&count)
	return count
}

// GetUsers returns users with filtering and pagination (admin only)
func GetUsers(c echo.Context) error {
	role := c.QueryParam("role")
	activeParam := c.QueryParam("is_active")
	keyword := c.QueryParam("keyword")

	page := 1
	limit := 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	query := db.DB.Model(&models.User{})

	if role != "" && models.IsValidUserRole(role) {
		query = query.Where("role = ?", role)
	}
	if activeParam != "" {
		if active, err := strconv.ParseBool(activeParam); err == nil {
			query = query.Where("is_active = ?", active)
		}
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count users")
	}

	offset := (page - 1) * limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	var users []models.User
	if err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": users,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetUser returns a single user by ID
func GetUser(c echo.Context) error {
	id := c.Param("id")
	var user models.User

	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "User not found",
		})
	}

	// Admins can view anyone, others only themselves
	if !middleware.CanAccessUser(c, user.ID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	return c.JSON(http.StatusOK, user)
}

// CreateUser creates a new user (admin only)
func CreateUser(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Name, email, and password are required",
		})
	}

	if req.Role == "" {
		req.Role = models.RoleStaff
	} else if !models.IsValidUserRole(req.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid role. Must be one of: admin, consultant, staff",
		})
	}

	if err := services.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "A user with that email already exists",
		})
	}

	hashedPassword, err := services.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to hash password",
		})
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     req.Role,
		Title:    strings.TrimSpace(req.Title),
		Phone:    strings.TrimSpace(req.Phone),
		IsActive: true,
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create user",
		})
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionCreate, "User", user.ID, user.Name,
		"Created user account with role "+user.Role, nil, map[string]interface{}{
			"email": user.Email,
			"role":  user.Role,
		})
	services.LogSecurityEvent(db.DB, "USER_CREATED", currentUser.ID, "Created user: "+user.ID)

	// Send welcome email asynchronously (non-blocking)
	cfg := c.Get("config").(*config.Config)
	loginURL := cfg.AppURL
	if loginURL == "" {
		loginURL = c.Scheme() + "://" + c.Request().Host
	}
	email := services.BuildWelcomeEmail(user.Email, user.Name, loginURL+"/login")
	services.SendEmailAsync(cfg, email)

	user.Password = ""
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser updates an existing user. Admins can update anyone including
// role and active status; other users can only update their own profile.
func UpdateUser(c echo.Context) error {
	id := c.Param("id")
	var user models.User

	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "User not found",
		})
	}

	if !middleware.CanModifyUser(c, user.ID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	currentUser := middleware.GetCurrentUser(c)

	// Fields non-admins must not change
	originalRole := user.Role
	originalActive := user.IsActive
	originalPassword := user.Password
	originalEmail := user.Email

	wasActiveAdmin := user.Role == models.RoleAdmin && user.IsActive

	if err := c.Bind(&user); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if !currentUser.IsAdmin() {
		user.Role = originalRole
		user.IsActive = originalActive
	}

	if user.Role != "" && !models.IsValidUserRole(user.Role) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid role. Must be one of: admin, consultant, staff",
		})
	}

	// Password changes go through the dedicated endpoint
	user.Password = originalPassword

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Name = strings.TrimSpace(user.Name)
	if user.Email == "" || user.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Name and email are required",
		})
	}

	if user.Email != originalEmail {
		var existing models.User
		if err := db.DB.Where("email = ? AND id != ?", user.Email, user.ID).First(&existing).Error; err == nil {
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "A user with that email already exists",
			})
		}
	}

	// The last active admin cannot be demoted or deactivated
	isActiveAdmin := user.Role == models.RoleAdmin && user.IsActive
	if wasActiveAdmin && !isActiveAdmin && countOtherActiveAdmins(user.ID) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Cannot demote or deactivate the last active administrator",
		})
	}

	if err := db.DB.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update user",
		})
	}

	// Deactivated users lose their sessions immediately
	if originalActive && !user.IsActive {
		services.DeleteAllUserSessions(db.DB, user.ID)
	}

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionUpdate, "User", user.ID, user.Name,
		"Updated user account",
		map[string]interface{}{"role": originalRole, "is_active": originalActive, "email": originalEmail},
		map[string]interface{}{"role": user.Role, "is_active": user.IsActive, "email": user.Email})

	if currentUser.ID != user.ID {
		services.LogSecurityEvent(db.DB, "USER_MODIFIED", currentUser.ID, "Modified user: "+user.ID)
	}

	user.Password = ""
	return c.JSON(http.StatusOK, user)
}

// DeleteUser soft-deletes a user (admin only)
func DeleteUser(c echo.Context) error {
	id := c.Param("id")
	currentUser := middleware.GetCurrentUser(c)

	var user models.User
	if err := db.DB.First(&user, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "User not found",
		})
	}

	if user.ID == currentUser.ID {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Cannot delete your own account",
		})
	}

	if user.Role == models.RoleAdmin && user.IsActive && countOtherActiveAdmins(user.ID) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Cannot delete the last active administrator",
		})
	}

	// Soft delete (GORM's default with DeletedAt field)
	if err := db.DB.Delete(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete user",
		})
	}

	services.DeleteAllUserSessions(db.DB, user.ID)

	auditCtx := middleware.GetAuditContext(c)
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionDelete, "User", user.ID, user.Name,
		"Deleted user account", map[string]interface{}{"email": user.Email, "role": user.Role}, nil)
	services.LogSecurityEvent(db.DB, "USER_DELETED", currentUser.ID, "Deleted user: "+user.ID)

	return c.NoContent(http.StatusNoContent)
}

// ChangePassword updates the authenticated user's own password.
// The current password must be supplied, and every other session is revoked.
func ChangePassword(c echo.Context) error {
	currentUser := middleware.GetCurrentUser(c)

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Current password and new password are required",
		})
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", currentUser.ID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}

	if !services.VerifyPassword(user.Password, req.CurrentPassword) {
		services.LogSecurityEvent(db.DB, "PASSWORD_CHANGE_FAILED", user.ID, "Wrong current password from "+c.RealIP())
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Current password is incorrect",
		})
	}

	if err := services.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	hashedPassword, err := services.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process password")
	}

	if err := db.DB.Model(&user).Update("password", hashedPassword).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	if session := middleware.GetCurrentSession(c); session != nil {
		services.DeleteOtherUserSessions(db.DB, user.ID, session.ID)
	}

	services.LogSecurityEvent(db.DB, "PASSWORD_CHANGED", user.ID, "Password changed from "+c.RealIP())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password updated",
	})
}
