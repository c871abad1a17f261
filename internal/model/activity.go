package model

import "time"

type ActivityAction string

const (
	ActionUpload        ActivityAction = "upload"
	ActionDelete        ActivityAction = "delete"
	ActionSummary       ActivityAction = "summary"
	ActionChat          ActivityAction = "chat"
	ActionQuizCompleted ActivityAction = "quiz_completed"
)

// Valid reports whether a is part of the fixed action vocabulary.
func (a ActivityAction) Valid() bool {
	switch a {
	case ActionUpload, ActionDelete, ActionSummary, ActionChat, ActionQuizCompleted:
		return true
	}
	return false
}

// ActivityLog is an append-only record of user-visible actions.
type ActivityLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Action    ActivityAction `gorm:"size:32;not null;index" json:"action"`
	Details   string         `gorm:"type:text" json:"details"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}
