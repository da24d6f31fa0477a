package models

import "time"

// Payment types and their fixed fees.
const (
	PaymentTypePublicationFee = "publication_fee"
	PaymentTypeReviewFee      = "review_fee"

	PublicationFeeAmount = 25000.00
	ReviewFeeAmount      = 3000.00
)

// Payment statuses. Only the gateway verification path moves a payment to
// success; only the review state machine flips the used flag.
const (
	PaymentStatusPending         = "pending"
	PaymentStatusSuccess         = "success"
	PaymentStatusFailed          = "failed"
	PaymentStatusRefundRequested = "refund_requested"
)

type Payment struct {
	PaymentID     int     `gorm:"primaryKey;column:payment_id" json:"payment_id"`
	UserID        int     `gorm:"column:user_id;index" json:"user_id"`
	Reference     string  `gorm:"column:reference;size:100;unique" json:"reference"`
	PaymentType   string  `gorm:"column:payment_type;size:20" json:"payment_type"`
	Amount        float64 `gorm:"column:amount" json:"amount"`
	Status        string  `gorm:"column:status;size:20;default:pending" json:"status"`
	Used          bool    `gorm:"column:used;default:false" json:"used"`
	PublicationID *string `gorm:"column:publication_id;size:12;index" json:"publication_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Subscription tracks free-review credits per user. Credits are granted once
// the first publication fee is consumed and capped at two uses.
type Subscription struct {
	SubscriptionID     int  `gorm:"primaryKey;column:subscription_id" json:"subscription_id"`
	UserID             int  `gorm:"column:user_id;uniqueIndex" json:"user_id"`
	FreeReviewsUsed    int  `gorm:"column:free_reviews_used;default:0" json:"free_reviews_used"`
	FreeReviewsGranted bool `gorm:"column:free_reviews_granted;default:false" json:"free_reviews_granted"`
}

// FreeReviewLimit caps free reviews per user while granted.
const FreeReviewLimit = 2

// TableName overrides
func (Payment) TableName() string {
	return "payments"
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// FeeAmountForType returns the fixed fee for a payment type, or false when the
// type is unknown.
func FeeAmountForType(paymentType string) (float64, bool) {
	switch paymentType {
	case PaymentTypePublicationFee:
		return PublicationFeeAmount, true
	case PaymentTypeReviewFee:
		return ReviewFeeAmount, true
	}
	return 0, false
}

// HasFreeReviewAvailable reports whether a free review credit can be consumed.
func (s *Subscription) HasFreeReviewAvailable() bool {
	if !s.FreeReviewsGranted {
		return false
	}
	return s.FreeReviewsUsed < FreeReviewLimit
}
