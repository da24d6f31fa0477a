package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"scholar-review-api/models"

	"gorm.io/gorm"
)

// transitionGraph is the legal-transition table. Approved is terminal; the
// only cycle is the explicit rejected -> pending resubmission loop.
var transitionGraph = map[string][]string{
	models.StatusDraft:       {models.StatusPending},
	models.StatusPending:     {models.StatusUnderReview},
	models.StatusUnderReview: {models.StatusApproved, models.StatusRejected},
	models.StatusRejected:    {models.StatusPending},
	models.StatusApproved:    {},
}

// TransitionAllowed reports whether from -> to appears in the graph.
func TransitionAllowed(from, to string) bool {
	for _, next := range transitionGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransition is the single policy function deciding whether the actor may
// request the given edge. Both the author-facing and editor-facing entry
// points consult it; no handler carries its own role checks.
func CanTransition(actor *models.User, pub *models.Publication, from, to string) bool {
	if actor == nil || pub == nil {
		return false
	}

	switch to {
	case models.StatusPending:
		// Submission and resubmission belong to the author alone.
		return actor.UserID == pub.AuthorID
	case models.StatusUnderReview, models.StatusApproved, models.StatusRejected:
		return actor.CanReview()
	}
	return false
}

// ReviewService owns the publication status field. Every status change goes
// through one of its two entry points and commits as a single transaction
// together with the ledger mutation and the history append.
type ReviewService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewReviewService(db *gorm.DB, notifier *Notifier) *ReviewService {
	return &ReviewService{db: db, notifier: notifier}
}

// SubmitInput carries the author's submission request. Content fields are
// optional; on resubmission at least one of them must differ from the stored
// rejected version.
type SubmitInput struct {
	UseFreeReview bool
	Title         *string
	Abstract      *string
	Content       *string
	Keywords      *string
	FilePath      *string
	VideoPath     *string
}

// editor review actions accepted by EditorReview.
const (
	ActionUnderReview = models.ReviewActionUnderReview
	ActionApprove     = "approve"
	ActionReject      = "reject"
)

// SubmitForReview moves a publication into pending on behalf of its author,
// enforcing the payment/credit gate. First submissions consume an unused
// publication fee and grant free-review credits; resubmissions consume either
// a free-review credit or an unused review fee and must change the content.
func (s *ReviewService) SubmitForReview(publicationID string, actor *models.User, in *SubmitInput) (*models.Publication, error) {
	if in == nil {
		in = &SubmitInput{}
	}

	var result *models.Publication
	var queued []NotificationInput

	op := func() error {
		queued = queued[:0]
		return s.db.Transaction(func(tx *gorm.DB) error {
			pub, err := loadPublication(tx, publicationID)
			if err != nil {
				return err
			}
			from := pub.Status

			if !CanTransition(actor, pub, from, models.StatusPending) {
				return errForbidden(from, models.StatusPending, "only the author may submit this publication for review")
			}
			if !TransitionAllowed(from, models.StatusPending) {
				return errInvalidTransition(from, models.StatusPending)
			}

			now := time.Now()
			updates := map[string]interface{}{
				"status":         models.StatusPending,
				"is_free_review": false,
				"update_at":      now,
			}

			switch from {
			case models.StatusDraft:
				// First submission: one unused successful publication fee,
				// consumed atomically, then free reviews granted (idempotent).
				if err := s.consumePayment(tx, actor.UserID, models.PaymentTypePublicationFee, publicationID, from); err != nil {
					return err
				}
				if err := s.grantFreeReviews(tx, actor.UserID); err != nil {
					return err
				}
				if pub.SubmittedAt == nil {
					updates["submitted_at"] = now
				}

			case models.StatusRejected:
				// Resubmission: unchanged work is not re-reviewed.
				if !hasSubstantiveChange(pub, in) {
					return errNoSubstantiveChange(from, models.StatusPending)
				}
				if in.UseFreeReview {
					if err := s.consumeFreeReview(tx, actor.UserID); err != nil {
						return err
					}
					updates["is_free_review"] = true
				} else {
					if err := s.consumePayment(tx, actor.UserID, models.PaymentTypeReviewFee, publicationID, from); err != nil {
						return err
					}
				}
			}

			applyContentUpdates(updates, in)

			if err := transitionStatus(tx, publicationID, from, updates); err != nil {
				return err
			}

			updated, err := loadPublication(tx, publicationID)
			if err != nil {
				return err
			}
			result = updated

			queued = append(queued, NotificationInput{
				UserID:        actor.UserID,
				Title:         "Publication submitted",
				Message:       fmt.Sprintf("Your publication '%s' has been submitted and is pending review.", updated.Title),
				Type:          models.NotificationTypeSuccess,
				PublicationID: &updated.PublicationID,
			})
			return nil
		})
	}

	if err := s.runWithRetry(op); err != nil {
		return nil, err
	}

	// Dispatch strictly after commit: a notification failure never rolls the
	// transition back.
	s.notifier.Dispatch(queued)
	return result, nil
}

// EditorReview applies an editor action (under_review, approve, reject) to a
// publication. The rejection note is mandatory for reject; approve stamps the
// publication date; every action appends one immutable history row.
func (s *ReviewService) EditorReview(publicationID string, actor *models.User, action, note string) (*models.Publication, error) {
	target, historyAction, err := resolveEditorAction(action)
	if err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)

	var result *models.Publication
	var queued []NotificationInput

	op := func() error {
		queued = queued[:0]
		return s.db.Transaction(func(tx *gorm.DB) error {
			pub, err := loadPublication(tx, publicationID)
			if err != nil {
				return err
			}
			from := pub.Status

			if !CanTransition(actor, pub, from, target) {
				return errForbidden(from, target, "only editors may review publications")
			}
			if !TransitionAllowed(from, target) {
				return errInvalidTransition(from, target)
			}
			if target == models.StatusRejected && note == "" {
				return errMissingRejectionNote(from)
			}

			now := time.Now()
			updates := map[string]interface{}{
				"status":    target,
				"editor_id": actor.UserID, // policy: always the acting editor
				"update_at": now,
			}
			switch target {
			case models.StatusRejected:
				updates["rejection_count"] = gorm.Expr("rejection_count + 1")
				updates["rejection_note"] = note
			case models.StatusApproved:
				updates["publication_date"] = now
			}

			if err := transitionStatus(tx, publicationID, from, updates); err != nil {
				return err
			}

			history := models.ReviewHistory{
				PublicationID: publicationID,
				EditorID:      &actor.UserID,
				Action:        historyAction,
				CreatedAt:     now,
			}
			if target == models.StatusRejected {
				history.Note = &note
			}
			if err := tx.Create(&history).Error; err != nil {
				return fmt.Errorf("failed to append review history: %w", err)
			}

			updated, err := loadPublication(tx, publicationID)
			if err != nil {
				return err
			}
			result = updated

			queued = s.buildReviewNotifications(tx, updated, actor, target, note)
			return nil
		})
	}

	if err := s.runWithRetry(op); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(queued)
	return result, nil
}

// runWithRetry retries the operation once on lock contention, then surfaces
// the concurrent modification to the caller.
func (s *ReviewService) runWithRetry(op func() error) error {
	err := op()
	if te, ok := AsTransitionError(err); ok && te.Code == ErrCodeConcurrentModification {
		err = op()
	}
	return err
}

func resolveEditorAction(action string) (target, historyAction string, err error) {
	switch strings.TrimSpace(action) {
	case ActionUnderReview:
		return models.StatusUnderReview, models.ReviewActionUnderReview, nil
	case ActionApprove:
		return models.StatusApproved, models.ReviewActionApproved, nil
	case ActionReject:
		return models.StatusRejected, models.ReviewActionRejected, nil
	}
	return "", "", &TransitionError{
		Code:    ErrCodeInvalidTransition,
		Field:   "action",
		Message: fmt.Sprintf("unknown review action %q", action),
	}
}

func loadPublication(tx *gorm.DB, publicationID string) (*models.Publication, error) {
	var pub models.Publication
	if err := tx.First(&pub, "publication_id = ?", publicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPublicationNotFound(publicationID)
		}
		return nil, fmt.Errorf("failed to load publication %s: %w", publicationID, err)
	}
	return &pub, nil
}

// transitionStatus performs the guarded status write. The WHERE clause pins
// the expected current status so two concurrent requests can never both
// transition from the same stale state.
func transitionStatus(tx *gorm.DB, publicationID, expectedStatus string, updates map[string]interface{}) error {
	res := tx.Model(&models.Publication{}).
		Where("publication_id = ? AND status = ?", publicationID, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update publication status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		target, _ := updates["status"].(string)
		return errConcurrentModification(expectedStatus, target)
	}
	return nil
}

// consumePayment finds an unused successful payment of the given type scoped
// to this publication and user, and marks it used. The check-and-set runs as
// a guarded UPDATE so a payment can be consumed by at most one transition.
func (s *ReviewService) consumePayment(tx *gorm.DB, userID int, paymentType, publicationID, from string) error {
	amount, _ := models.FeeAmountForType(paymentType)

	// Payments pinned to this publication are preferred; payments initialized
	// without a publication also qualify.
	var candidates []models.Payment
	if err := tx.Where(
		"user_id = ? AND payment_type = ? AND (publication_id = ? OR publication_id IS NULL) AND status = ? AND used = ?",
		userID, paymentType, publicationID, models.PaymentStatusSuccess, false,
	).Order("publication_id IS NULL ASC, created_at ASC").Find(&candidates).Error; err != nil {
		return fmt.Errorf("failed to look up payments: %w", err)
	}

	for _, payment := range candidates {
		res := tx.Model(&models.Payment{}).
			Where("payment_id = ? AND used = ? AND status = ?", payment.PaymentID, false, models.PaymentStatusSuccess).
			Update("used", true)
		if res.Error != nil {
			return fmt.Errorf("failed to consume payment %s: %w", payment.Reference, res.Error)
		}
		if res.RowsAffected == 1 {
			return nil
		}
		// Lost the race for this row; try the next candidate.
	}

	return errPaymentRequired(from, models.StatusPending, amount)
}

// grantFreeReviews flips free_reviews_granted for the user, creating the
// subscription row when missing. Granting again never resets the used count.
func (s *ReviewService) grantFreeReviews(tx *gorm.DB, userID int) error {
	sub := models.Subscription{UserID: userID}
	if err := tx.Where("user_id = ?", userID).FirstOrCreate(&sub).Error; err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub.FreeReviewsGranted {
		return nil
	}
	if err := tx.Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Update("free_reviews_granted", true).Error; err != nil {
		return fmt.Errorf("failed to grant free reviews: %w", err)
	}
	return nil
}

// consumeFreeReview increments free_reviews_used under the grant-and-cap
// guard. Zero rows affected means no credit was available.
func (s *ReviewService) consumeFreeReview(tx *gorm.DB, userID int) error {
	sub := models.Subscription{UserID: userID}
	if err := tx.Where("user_id = ?", userID).FirstOrCreate(&sub).Error; err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	res := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND free_reviews_granted = ? AND free_reviews_used < ?",
			userID, true, models.FreeReviewLimit).
		Update("free_reviews_used", gorm.Expr("free_reviews_used + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to consume free review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errNoFreeReviewAvailable(models.StatusRejected, models.StatusPending)
	}
	return nil
}

// hasSubstantiveChange reports whether the resubmission changes the title,
// abstract, content or attached files compared with the stored version.
func hasSubstantiveChange(pub *models.Publication, in *SubmitInput) bool {
	if in.Title != nil && strings.TrimSpace(*in.Title) != pub.Title {
		return true
	}
	if in.Abstract != nil && strings.TrimSpace(*in.Abstract) != pub.Abstract {
		return true
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) != pub.Content {
		return true
	}
	if in.FilePath != nil && !equalOptional(in.FilePath, pub.FilePath) {
		return true
	}
	if in.VideoPath != nil && !equalOptional(in.VideoPath, pub.VideoPath) {
		return true
	}
	return false
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func applyContentUpdates(updates map[string]interface{}, in *SubmitInput) {
	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Abstract != nil {
		updates["abstract"] = strings.TrimSpace(*in.Abstract)
	}
	if in.Content != nil {
		updates["content"] = strings.TrimSpace(*in.Content)
	}
	if in.Keywords != nil {
		updates["keywords"] = strings.TrimSpace(*in.Keywords)
	}
	if in.FilePath != nil {
		updates["file_path"] = *in.FilePath
	}
	if in.VideoPath != nil {
		updates["video_path"] = *in.VideoPath
	}
}

// buildReviewNotifications prepares the author notification and the fan-out
// to the other editors for a committed editor action. Reading the editor list
// inside the transaction keeps the set consistent with the committed state.
func (s *ReviewService) buildReviewNotifications(tx *gorm.DB, pub *models.Publication, actor *models.User, target, note string) []NotificationInput {
	queued := make([]NotificationInput, 0, 4)

	authorMsg := fmt.Sprintf("Your publication '%s' has been %s.", pub.Title, strings.ReplaceAll(target, "_", " "))
	if target == models.StatusRejected && note != "" {
		authorMsg += " Reason: " + note
	}
	notifType := models.NotificationTypeInfo
	switch target {
	case models.StatusApproved:
		notifType = models.NotificationTypeSuccess
	case models.StatusRejected:
		notifType = models.NotificationTypeError
	}
	queued = append(queued, NotificationInput{
		UserID:        pub.AuthorID,
		Title:         "Publication status updated",
		Message:       authorMsg,
		Type:          notifType,
		PublicationID: &pub.PublicationID,
	})

	var editors []models.User
	if err := tx.Where("role_id = ? AND user_id <> ? AND delete_at IS NULL", models.RoleEditor, actor.UserID).
		Find(&editors).Error; err != nil {
		// Fan-out is best effort; the author notification still goes out.
		return queued
	}
	editorMsg := fmt.Sprintf("Publication '%s' was marked %s by %s.", pub.Title, target, actor.DisplayName())
	if target == models.StatusRejected && note != "" {
		editorMsg += " Reason: " + note
	}
	for _, editor := range editors {
		queued = append(queued, NotificationInput{
			UserID:        editor.UserID,
			Title:         "Publication reviewed",
			Message:       editorMsg,
			Type:          models.NotificationTypeInfo,
			PublicationID: &pub.PublicationID,
		})
	}
	return queued
}
