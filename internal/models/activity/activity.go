package activity

import (
	"time"

	"github.com/google/uuid"
)

// Entry - неизменяемая запись журнала действий.
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	User        string     `json:"user"`
	Action      Action     `json:"action"`
	TargetType  TargetType `json:"target_type"`
	TargetTitle string     `json:"target_title"`
	Timestamp   time.Time  `json:"timestamp"`
}

type Action string
type TargetType string

const ActionCreated Action = "CREATED"
const ActionCompleted Action = "COMPLETED"
const ActionUpdated Action = "UPDATED"
const ActionDeleted Action = "DELETED"
const ActionUndo Action = "UNDO"

const TargetTask TargetType = "TASK"
const TargetProject TargetType = "PROJECT"

// RecentLimit - жёсткий предел выдачи журнала.
const RecentLimit = 50
