package models

import (
	"math"
	"time"
)

// MaxInteger is the largest value the INTEGER columns (order_number,
// allocated_time, elapsed_seconds) hold.
const MaxInteger = math.MaxInt32

// Checklist is a titled container of tasks owned by one profile.
type Checklist struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	Title        string    `json:"title"`
	IsSharedCopy bool      `json:"is_shared_copy"`
	CreatedAt    time.Time `json:"created_at"`
}

// Task is a unit of work, optionally nested under a parent in the same checklist.
type Task struct {
	ID            string     `json:"id"`
	ChecklistID   string     `json:"checklist_id"`
	ParentID      *string    `json:"parent_id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	OrderNumber   int        `json:"order_number"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	AllocatedTime *int       `json:"allocated_time"` // minutes
	IsCompleted   bool       `json:"is_completed"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TaskPatch is a field-presence driven update. Pointer fields are non-nullable
// columns (nil = unchanged); Nullable fields may also be cleared with null.
type TaskPatch struct {
	Title         *string             `json:"title"`
	Description   Nullable[string]    `json:"description"`
	ParentID      Nullable[string]    `json:"parent_id"`
	OrderNumber   *int                `json:"order_number"`
	StartTime     Nullable[time.Time] `json:"start_time"`
	EndTime       Nullable[time.Time] `json:"end_time"`
	AllocatedTime Nullable[int]       `json:"allocated_time"`
	IsCompleted   *bool               `json:"is_completed"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && !p.Description.Set && !p.ParentID.Set && p.OrderNumber == nil &&
		!p.StartTime.Set && !p.EndTime.Set && !p.AllocatedTime.Set && p.IsCompleted == nil
}

// TimerLog is an append-only record of time spent on a checklist.
type TimerLog struct {
	ID             string    `json:"id"`
	ChecklistID    string    `json:"checklist_id"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	CreatedAt      time.Time `json:"created_at"`
}

// TimerLogCommand is the Kafka payload for asynchronous timer-log appends.
type TimerLogCommand struct {
	ID             string    `json:"id"`
	ChecklistID    string    `json:"checklist_id"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	RequestedAt    time.Time `json:"requested_at"`
}
