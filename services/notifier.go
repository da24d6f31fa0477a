package services

import (
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"scholar-review-api/config"
	"scholar-review-api/models"
	"scholar-review-api/utils"

	"gorm.io/gorm"
)

// NotificationInput is one fire-and-forget message addressed to a user.
type NotificationInput struct {
	UserID        int
	Title         string
	Message       string
	Type          string // info|success|warning|error
	PublicationID *string
}

// Notifier is the notification sink. Dispatch is best effort and runs outside
// the review transaction: a failed insert or email is logged and swallowed,
// never surfaced to the caller.
type Notifier struct {
	db        *gorm.DB
	sendEmail bool
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db, sendEmail: true}
}

// NewSilentNotifier returns a notifier that skips email delivery. Used by
// jobs and tests where SMTP is not configured.
func NewSilentNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Dispatch persists the notification rows and triggers email delivery in the
// background. Failures never propagate.
func (n *Notifier) Dispatch(items []NotificationInput) {
	if n == nil || len(items) == 0 {
		return
	}

	for _, item := range items {
		row := models.Notification{
			UserID:               item.UserID,
			Title:                item.Title,
			Message:              item.Message,
			Type:                 item.Type,
			RelatedPublicationID: item.PublicationID,
			CreateAt:             time.Now(),
		}
		if err := n.db.Create(&row).Error; err != nil {
			log.Printf("[Notifier] failed to store notification for user %d: %v", item.UserID, err)
		}
	}

	if !n.sendEmail {
		return
	}
	go n.deliverEmails(items)
}

// NotifyNewSubmission fans out the creation-time event: every editor is told
// once per publication, or the author is warned when no editors exist.
func (n *Notifier) NotifyNewSubmission(pub *models.Publication, author *models.User) {
	if n == nil || pub == nil || author == nil {
		return
	}

	var editors []models.User
	if err := n.db.Where("role_id = ? AND delete_at IS NULL", models.RoleEditor).Find(&editors).Error; err != nil {
		log.Printf("[Notifier] failed to load editors: %v", err)
		return
	}

	if len(editors) == 0 {
		n.Dispatch([]NotificationInput{{
			UserID:        author.UserID,
			Title:         "No editors available",
			Message:       fmt.Sprintf("No editors are available to review your publication '%s'. Please contact an administrator.", pub.Title),
			Type:          models.NotificationTypeWarning,
			PublicationID: &pub.PublicationID,
		}})
		return
	}

	items := make([]NotificationInput, 0, len(editors))
	for _, editor := range editors {
		items = append(items, NotificationInput{
			UserID:        editor.UserID,
			Title:         "New publication submitted",
			Message:       fmt.Sprintf("New publication '%s' submitted for review by %s.", pub.Title, author.DisplayName()),
			Type:          models.NotificationTypeInfo,
			PublicationID: &pub.PublicationID,
		})
	}
	n.Dispatch(items)
}

func (n *Notifier) deliverEmails(items []NotificationInput) {
	for _, item := range items {
		var user models.User
		if err := n.db.Select("user_id, full_name, email").
			First(&user, "user_id = ?", item.UserID).Error; err != nil {
			continue
		}
		if !utils.ValidateEmail(user.Email) {
			continue
		}
		html := buildNotificationEmailHTML(item.Title, user.DisplayName(), item.Message)
		sendMailSafe([]string{user.Email}, item.Title, html)
	}
}

func sendMailSafe(to []string, subject, html string) {
	if err := config.SendMail(to, subject, html); err != nil {
		log.Printf("notification email send failed (subject=%q to=%v): %v", subject, to, err)
	}
}

func buildNotificationEmailHTML(subject, recipientName, message string) string {
	name := strings.TrimSpace(recipientName)
	if name == "" {
		name = "there"
	}

	escapedSubject := template.HTMLEscapeString(subject)
	escapedGreeting := template.HTMLEscapeString(fmt.Sprintf("Dear %s,", name))
	escapedMessage := template.HTMLEscapeString(strings.TrimSpace(message))
	escapedMessage = strings.ReplaceAll(strings.ReplaceAll(escapedMessage, "\r\n", "\n"), "\r", "\n")
	escapedMessage = strings.ReplaceAll(escapedMessage, "\n", "<br />")

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body style="margin:0;padding:0;background-color:#f9fafb;font-family:'Segoe UI',Tahoma,Arial,sans-serif;">
<div style="max-width:640px;margin:0 auto;padding:24px 20px;">
  <div style="background-color:#ffffff;border:1px solid #e5e7eb;border-radius:12px;padding:24px 24px 28px 24px;">
    <p style="margin:0 0 16px 0;font-size:16px;line-height:1.7;color:#111827;">%s</p>
    <p style="margin:0 0 0 0;font-size:16px;line-height:1.7;color:#111827;word-break:break-word;">%s</p>
  </div>
</div>
</body>
</html>`, escapedSubject, escapedGreeting, escapedMessage)
}
