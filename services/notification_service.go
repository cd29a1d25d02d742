package services

import (
	"fmt"
	"talent_flow_app_go/models"
	"time"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// ListNotifications returns a page of the user's notifications, unread first,
// newest first within each group.
func (s *NotificationService) ListNotifications(userID string, page, limit int) ([]models.Notification, int64, error) {
	var total int64
	if err := s.DB.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	offset := (page - 1) * limit
	err := s.DB.Where("user_id = ?", userID).
		Order("read_at IS NULL DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (s *NotificationService) GetUnreadCount(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkAsRead(notificationID, userID string) error {
	now := time.Now()
	result := s.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(userID string) error {
	now := time.Now()
	return s.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	return s.DB.Create(notification).Error
}

// NotifyCaseAssigned creates an in-app notification for a consultant who was
// assigned a case.
func (s *NotificationService) NotifyCaseAssigned(c *models.Case, assigneeID, clientName string) error {
	notification := &models.Notification{
		UserID:   assigneeID,
		CaseID:   &c.ID,
		ClientID: &c.ClientID,
		Type:     models.NotificationTypeCaseAssigned,
		Title:    fmt.Sprintf("Case %s assigned to you", c.CaseNumber),
		Message:  fmt.Sprintf("%s (%s) is now assigned to you.", c.Title, clientName),
		LinkURL:  fmt.Sprintf("/api/cases/%s", c.ID),
	}
	return s.CreateNotification(notification)
}

// NotifyCaseStatusChanged notifies the assignee that a case they own changed status
func (s *NotificationService) NotifyCaseStatusChanged(c *models.Case, assigneeID, oldStatus, newStatus string) error {
	notification := &models.Notification{
		UserID:  assigneeID,
		CaseID:  &c.ID,
		Type:    models.NotificationTypeCaseStatus,
		Title:   fmt.Sprintf("Case %s moved to %s", c.CaseNumber, newStatus),
		Message: fmt.Sprintf("Status changed from %s to %s.", oldStatus, newStatus),
		LinkURL: fmt.Sprintf("/api/cases/%s", c.ID),
	}
	return s.CreateNotification(notification)
}

// NotifyContractExpiring warns a user that a contract is close to its end date
func (s *NotificationService) NotifyContractExpiring(contract *models.Contract, userID, clientName string, daysLeft int) error {
	endsOn := ""
	if contract.EndsOn != nil {
		endsOn = contract.EndsOn.Format("2006-01-02")
	}
	notification := &models.Notification{
		UserID:     userID,
		ClientID:   &contract.ClientID,
		ContractID: &contract.ID,
		Type:       models.NotificationTypeContractExpiring,
		Title:      fmt.Sprintf("Contract for %s expires in %d days", clientName, daysLeft),
		Message:    fmt.Sprintf("Contract v%d ends on %s. Review it for renewal.", contract.Version, endsOn),
		LinkURL:    fmt.Sprintf("/api/contracts/%s", contract.ID),
	}
	return s.CreateNotification(notification)
}
