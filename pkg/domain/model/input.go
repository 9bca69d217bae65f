package model

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

var validate = validator.New()

// CreateActionInput is the payload for creating an action. ResponsibleFollowup
// is required for global actions only.
type CreateActionInput struct {
	Kind                types.ActionKind   `json:"kind" validate:"required"`
	Title               string             `json:"title" validate:"required"`
	Content             string             `json:"content" validate:"required"`
	Source              string             `json:"source" validate:"required"`
	Manager             types.UserID       `json:"manager" validate:"required"`
	Responsible         types.UserID       `json:"responsible" validate:"required"`
	ResponsibleFollowup types.UserID       `json:"responsible_followup"`
	StartDate           time.Time          `json:"start_date" validate:"required"`
	EndDate             time.Time          `json:"end_date" validate:"required"`
	Status              types.ActionStatus `json:"status"`
	Category            string             `json:"category" validate:"required"`
	ProjectID           string             `json:"project_id"`
	ParentActionID      types.ActionID     `json:"parent_action_id"`
	NeedsValidation     bool               `json:"needs_validation"`
}

// Validate checks required fields, the status enum and date ordering. It is
// called before any write happens.
func (in *CreateActionInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return goerr.Wrap(ErrInvalidInput, "invalid action payload", goerr.V("cause", err.Error()))
	}
	if !in.Kind.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid action kind", goerr.V("kind", in.Kind))
	}
	if in.Kind == types.ActionKindGlobal && in.ResponsibleFollowup == "" {
		return goerr.Wrap(ErrInvalidInput, "responsible_followup is required for global actions")
	}
	if in.Kind == types.ActionKindProject && in.ParentActionID != 0 {
		return goerr.Wrap(ErrInvalidInput, "parent_action_id is only allowed for global actions")
	}
	if in.Status != "" && !in.Status.IsValidFor(in.Kind) {
		return goerr.Wrap(ErrInvalidInput, "invalid action status",
			goerr.V("status", in.Status), goerr.V("kind", in.Kind))
	}
	return validateDateOrder(in.StartDate, in.EndDate)
}

// UpdateActionInput is a sparse patch: nil pointer fields are left untouched.
// Source and Manager are never patchable; the stored values are preserved.
type UpdateActionInput struct {
	Title               *string             `json:"title"`
	Content             *string             `json:"content"`
	Responsible         *types.UserID       `json:"responsible"`
	ResponsibleFollowup *types.UserID       `json:"responsible_followup"`
	StartDate           *time.Time          `json:"start_date"`
	EndDate             *time.Time          `json:"end_date"`
	Status              *types.ActionStatus `json:"status"`
	Category            *string             `json:"category"`
	NeedsValidation     *bool               `json:"needs_validation"`
}

// Validate re-runs field-level validators against the patched action. The
// stored action supplies values for fields the patch omits.
func (in *UpdateActionInput) Validate(stored *Action) error {
	if in.Title != nil && *in.Title == "" {
		return goerr.Wrap(ErrInvalidInput, "action title cannot be empty")
	}
	if in.Content != nil && *in.Content == "" {
		return goerr.Wrap(ErrInvalidInput, "action content cannot be empty")
	}
	if in.Responsible != nil && *in.Responsible == "" {
		return goerr.Wrap(ErrInvalidInput, "responsible cannot be empty")
	}
	if in.Status != nil && !in.Status.IsValidFor(stored.Kind) {
		return goerr.Wrap(ErrInvalidInput, "invalid action status",
			goerr.V("status", *in.Status), goerr.V("kind", stored.Kind))
	}

	start := stored.StartDate
	if in.StartDate != nil {
		start = *in.StartDate
	}
	end := stored.EndDate
	if in.EndDate != nil {
		end = *in.EndDate
	}
	return validateDateOrder(start, end)
}

func validateDateOrder(start, end time.Time) error {
	if !end.After(start) {
		return goerr.Wrap(ErrInvalidInput, "end date must be after start date",
			goerr.V("start_date", start), goerr.V("end_date", end))
	}
	return nil
}

// CreateTaskInput is the payload for creating a personal task. Personal tasks
// carry no ActionID and are invisible to the sync engine.
type CreateTaskInput struct {
	Title           string           `json:"title" validate:"required"`
	Description     string           `json:"description"`
	Assignee        types.UserID     `json:"assignee" validate:"required"`
	Creator         types.UserID     `json:"creator" validate:"required"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Status          types.TaskStatus `json:"status"`
	Category        string           `json:"category"`
	NeedsValidation bool             `json:"needs_validation"`
}

// Validate checks required fields, the status enum and date ordering when
// both dates are set
func (in *CreateTaskInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return goerr.Wrap(ErrInvalidInput, "invalid task payload", goerr.V("cause", err.Error()))
	}
	if in.Status != "" && !in.Status.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid task status", goerr.V("status", in.Status))
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() {
		return validateDateOrder(in.StartDate, in.EndDate)
	}
	return nil
}

// ListActionsFilter restricts List to equality matches; empty fields match all
type ListActionsFilter struct {
	Kind        types.ActionKind   `json:"kind,omitempty"`
	Status      types.ActionStatus `json:"status,omitempty"`
	Category    string             `json:"category,omitempty"`
	ProjectID   string             `json:"project_id,omitempty"`
	Responsible types.UserID       `json:"responsible,omitempty"`
}

// Matches reports whether the action satisfies every set filter field. The
// responsible filter matches either responsible field.
func (f *ListActionsFilter) Matches(a *Action) bool {
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.ProjectID != "" && a.ProjectID != f.ProjectID {
		return false
	}
	if f.Responsible != "" && a.Responsible != f.Responsible && a.ResponsibleFollowup != f.Responsible {
		return false
	}
	return true
}

// SearchActionsInput describes a paginated search. SearchTerm matches title or
// content case-insensitively; Responsible matches either responsible field.
type SearchActionsInput struct {
	SearchTerm  string       `json:"search_term,omitempty"`
	Responsible types.UserID `json:"responsible,omitempty"`
	Category    string       `json:"category,omitempty"`
	ProjectID   string       `json:"project_id,omitempty"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
}

// Normalize clamps pagination to sane defaults
func (in *SearchActionsInput) Normalize() {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 20
	}
}

// Pagination describes the page layout of a search result
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// SearchResult is one page of matched actions plus pagination metadata
type SearchResult struct {
	Actions    []*Action  `json:"actions"`
	Pagination Pagination `json:"pagination"`
}
