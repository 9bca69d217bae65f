package model

import (
	"time"

	"github.com/petroops-lab/derrick/pkg/domain/types"
)

// Action represents a manager-initiated unit of requested work. Project-kind
// actions have a single responsible party; global-kind actions split
// responsibility between realization and follow-up and may nest one level of
// sub-actions under a parent.
type Action struct {
	ID                  types.ActionID     `json:"id"`
	Kind                types.ActionKind   `json:"kind"`
	Title               string             `json:"title"`
	Content             string             `json:"content"`
	Source              string             `json:"source"` // free-text origin label, preserved across updates
	Manager             types.UserID       `json:"manager"`
	Responsible         types.UserID       `json:"responsible"` // executes the work (realization)
	ResponsibleFollowup types.UserID       `json:"responsible_followup,omitempty"` // tracks completion (global kind only)
	StartDate           time.Time          `json:"start_date"`
	EndDate             time.Time          `json:"end_date"`
	Status              types.ActionStatus `json:"status"`
	Category            string             `json:"category"`
	ProjectID           string             `json:"project_id,omitempty"`
	ParentActionID      types.ActionID     `json:"parent_action_id,omitempty"` // global kind only, one level deep
	NeedsValidation     bool               `json:"needs_validation"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Responsibles returns the distinct responsible parties of the action in
// notification order: realization first, then follow-up.
func (a *Action) Responsibles() []types.UserID {
	out := []types.UserID{a.Responsible}
	if a.ResponsibleFollowup != "" && a.ResponsibleFollowup != a.Responsible {
		out = append(out, a.ResponsibleFollowup)
	}
	return out
}

// Clone returns a deep copy of the action
func (a *Action) Clone() *Action {
	copied := *a
	return &copied
}
