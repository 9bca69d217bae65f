package model

import (
	"time"

	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// Task is an executable unit of work assigned to exactly one user. Tasks with
// a non-zero ActionID are derived from an action and kept in sync with it;
// ActionID is immutable once set. Tasks without an ActionID are free-standing
// personal tasks and are never touched by the sync engine.
type Task struct {
	ID              types.TaskID     `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Assignee        types.UserID     `json:"assignee"`
	Creator         types.UserID     `json:"creator"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Status          types.TaskStatus `json:"status"`
	Progress        int              `json:"progress"` // 0..100
	ActionID        types.ActionID   `json:"action_id,omitempty"`
	Type            types.TaskType   `json:"type,omitempty"` // realization/followup for derived tasks, empty otherwise
	Category        string           `json:"category,omitempty"`
	NeedsValidation bool             `json:"needs_validation"`
	Comments        []TaskComment    `json:"comments,omitempty"`
	Files           []TaskFile       `json:"files,omitempty"`
	Subtasks        []Subtask        `json:"subtasks,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// IsDerived reports whether the task originates from an action
func (t *Task) IsDerived() bool {
	return t.ActionID != 0
}

// TaskComment is an opaque sub-record; the sync engine never touches comments
// except when the whole task is deleted.
type TaskComment struct {
	Author    types.UserID `json:"author"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
}

// TaskFile references an uploaded attachment by storage key. Blob contents
// are handled elsewhere.
type TaskFile struct {
	Name       string       `json:"name"`
	StorageKey string       `json:"storage_key"`
	UploadedBy types.UserID `json:"uploaded_by"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// Subtask is a lightweight checklist entry under a task
type Subtask struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Clone returns a deep copy of the task
func (t *Task) Clone() *Task {
	copied := *t
	if t.Comments != nil {
		copied.Comments = make([]TaskComment, len(t.Comments))
		copy(copied.Comments, t.Comments)
	}
	if t.Files != nil {
		copied.Files = make([]TaskFile, len(t.Files))
		copy(copied.Files, t.Files)
	}
	if t.Subtasks != nil {
		copied.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(copied.Subtasks, t.Subtasks)
	}
	return &copied
}
