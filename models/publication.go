package models

import "time"

// Publication workflow statuses. Status changes go exclusively through
// services.ReviewService; nothing else writes the status column.
const (
	StatusDraft       = "draft"
	StatusPending     = "pending"
	StatusUnderReview = "under_review"
	StatusRejected    = "rejected"
	StatusApproved    = "approved"
)

type Publication struct {
	PublicationID string  `gorm:"primaryKey;column:publication_id;size:12" json:"publication_id"`
	DOI           string  `gorm:"column:doi;unique" json:"doi"`
	Title         string  `gorm:"column:title;size:255" json:"title"`
	Abstract      string  `gorm:"column:abstract;type:text" json:"abstract"`
	Content       string  `gorm:"column:content;type:text" json:"content"`
	Keywords      string  `gorm:"column:keywords;type:text" json:"keywords"`
	CategoryName  *string `gorm:"column:category_name" json:"category_name,omitempty"`
	FilePath      *string `gorm:"column:file_path" json:"file_path,omitempty"`
	VideoPath     *string `gorm:"column:video_path" json:"video_path,omitempty"`

	AuthorID int    `gorm:"column:author_id;index" json:"author_id"`
	Status   string `gorm:"column:status;size:20;index;default:draft" json:"status"`

	// Editor is set on the first review action and never cleared afterwards.
	EditorID       *int    `gorm:"column:editor_id" json:"editor_id,omitempty"`
	RejectionCount int     `gorm:"column:rejection_count;default:0" json:"rejection_count"`
	RejectionNote  *string `gorm:"column:rejection_note;type:text" json:"rejection_note,omitempty"`
	IsFreeReview   bool    `gorm:"column:is_free_review;default:false" json:"is_free_review"`
	ViewCount      int     `gorm:"column:view_count;default:0" json:"view_count"`

	// SubmittedAt records the first transition into pending; PublicationDate is
	// set only when the publication is approved.
	SubmittedAt     *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	PublicationDate *time.Time `gorm:"column:publication_date" json:"publication_date,omitempty"`

	CreateAt time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`
	UpdateAt time.Time `gorm:"column:update_at;autoUpdateTime" json:"update_at"`

	// Relations
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Editor   *User     `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryName;references:Name" json:"category,omitempty"`
}

// Category is a fixed vocabulary keyed by name.
type Category struct {
	Name string `gorm:"primaryKey;column:name;size:50" json:"name"`
}

// TableName overrides
func (Publication) TableName() string {
	return "publications"
}

func (Category) TableName() string {
	return "categories"
}

// IsTerminal reports whether the publication can no longer transition.
// Approved is the only terminal state; rejected reopens via resubmission.
func (p *Publication) IsTerminal() bool {
	return p.Status == StatusApproved
}
