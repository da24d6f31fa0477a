package models

import "time"

// Review history actions. The set mirrors the editor-side transitions.
const (
	ReviewActionUnderReview = "under_review"
	ReviewActionApproved    = "approved"
	ReviewActionRejected    = "rejected"
)

// ReviewHistory is the append-only audit trail of editor actions on a
// publication. Rows are only ever inserted, never updated or deleted.
type ReviewHistory struct {
	HistoryID     int     `gorm:"primaryKey;column:history_id" json:"history_id"`
	PublicationID string  `gorm:"column:publication_id;size:12;index" json:"publication_id"`
	EditorID      *int    `gorm:"column:editor_id" json:"editor_id"`
	Action        string  `gorm:"column:action;size:20" json:"action"`
	Note          *string `gorm:"column:note;type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Editor *User `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
}

// TableName specifies the table for ReviewHistory.
func (ReviewHistory) TableName() string {
	return "review_history"
}
