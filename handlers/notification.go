package handlers

import (
	"net/http"
	"strconv"
	"talent_flow_app_go/db"
	"talent_flow_app_go/middleware"
	"talent_flow_app_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GetNotifications returns the current user's notifications, unread first
func GetNotifications(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

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

	service := services.NewNotificationService(db.DB)
	notifications, total, err := service.ListNotifications(user.ID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": notifications,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetUnreadNotificationCount returns the user's unread notification count
func GetUnreadNotificationCount(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	service := services.NewNotificationService(db.DB)
	count, err := service.GetUnreadCount(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count notifications")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"unread": count,
	})
}

// MarkNotificationRead marks one of the user's notifications as read
func MarkNotificationRead(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAsRead(c.Param("id"), user.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Notification not found",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification as read")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks all of the user's notifications as read
func MarkAllNotificationsRead(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	service := services.NewNotificationService(db.DB)
	if err := service.MarkAllAsRead(user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notifications as read")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "All notifications marked as read",
	})
}
