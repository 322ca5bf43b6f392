package service

import (
	"context"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc EmailService // nil disables email
}

func NewNotificationService(noteRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc EmailService) NotificationService {
	return &notificationService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		emailSvc: emailSvc,
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) Notify(ctx context.Context, userID, title, message string, attrs map[string]string) {
	log := logger.FromContext(ctx)

	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		log.Warn("Failed to store notification", "userID", userID, "title", title, "error", err)
	}

	if s.emailSvc == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Warn("Skipping notification email, no contact record", "userID", userID, "error", err)
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.emailSvc.SendEmail(ctx, user.Email, user.Name, title, message, emailBody(title, message)); err != nil {
		log.Warn("Failed to send notification email", "userID", userID, "title", title, "error", err)
	}
}
