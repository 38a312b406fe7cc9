package services

import (
	"fmt"
	"html"
	"log"

	"gorm.io/gorm"

	"thesis-management-api/config"
	"thesis-management-api/models"
)

// NotificationService emails the author when a thesis changes status.
// Delivery is best-effort: failures are logged and never affect the
// transition that triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyStatusChange looks up the author's address and sends a status notice
// in the background.
func (s *NotificationService) NotifyStatusChange(rec models.ThesisRecord) {
	if s == nil || s.db == nil {
		return
	}
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", rec.AuthorID).First(&user).Error; err != nil {
		log.Printf("Notification skipped, author %s not found: %v", rec.AuthorID, err)
		return
	}
	subject := fmt.Sprintf("Thesis status update: %s", statusLabel(rec.Status))
	body := fmt.Sprintf(
		`<p>Dear %s,</p><p>Your thesis <strong>%s</strong> is now <strong>%s</strong>.</p><p>Sign in to the portal for details.</p>`,
		html.EscapeString(user.FullName()),
		html.EscapeString(rec.Title),
		statusLabel(rec.Status),
	)
	sendMailSafe([]string{user.Email}, subject, body)
}

// sendMailSafe delivers in a goroutine so a slow SMTP relay never blocks a
// request, and recovers so a mailer panic cannot take the server down.
func sendMailSafe(to []string, subject, html string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("sendMail panic recovered: %v", r)
			}
		}()
		if err := config.SendMail(to, subject, html); err != nil {
			log.Printf("sendMail error: %v", err)
		}
	}()
}

func statusLabel(st models.ThesisStatus) string {
	switch st {
	case models.StatusPending:
		return "pending review"
	case models.StatusUnderReview:
		return "under review"
	case models.StatusReviewed:
		return "peer reviewed"
	case models.StatusPublished:
		return "published"
	case models.StatusRevisionRequired:
		return "awaiting revision"
	case models.StatusRejected:
		return "rejected"
	default:
		return string(st)
	}
}
