package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
)

func validCreateInput() *model.CreateActionInput {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &model.CreateActionInput{
		Kind:        types.ActionKindProject,
		Title:       "Inspect pipeline segment B-12",
		Content:     "Pressure anomaly reported by field crew",
		Source:      "weekly HSE meeting",
		Manager:     "U100",
		Responsible: "U200",
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 14),
		Category:    "maintenance",
	}
}

func TestCreateActionInput_Validate(t *testing.T) {
	t.Run("valid project payload", func(t *testing.T) {
		gt.NoError(t, validCreateInput().Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		in := validCreateInput()
		in.Title = ""
		err := in.Validate()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})

	t.Run("end date before start date", func(t *testing.T) {
		in := validCreateInput()
		in.EndDate = in.StartDate.AddDate(0, 0, -1)
		err := in.Validate()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, model.ErrInvalidInput)).True()
	})

	t.Run("end date equal to start date", func(t *testing.T) {
		in := validCreateInput()
		in.EndDate = in.StartDate
		gt.Error(t, in.Validate())
	})

	t.Run("global action requires followup responsible", func(t *testing.T) {
		in := validCreateInput()
		in.Kind = types.ActionKindGlobal
		gt.Error(t, in.Validate())

		in.ResponsibleFollowup = "U300"
		gt.NoError(t, in.Validate())
	})

	t.Run("global action rejects in_review", func(t *testing.T) {
		in := validCreateInput()
		in.Kind = types.ActionKindGlobal
		in.ResponsibleFollowup = "U300"
		in.Status = types.ActionStatusInReview
		gt.Error(t, in.Validate())
	})

	t.Run("project action rejects parent action", func(t *testing.T) {
		in := validCreateInput()
		in.ParentActionID = 7
		gt.Error(t, in.Validate())
	})
}

func TestUpdateActionInput_Validate(t *testing.T) {
	stored := &model.Action{
		Kind:      types.ActionKindProject,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	t.Run("patched end date checked against stored start date", func(t *testing.T) {
		bad := stored.StartDate.AddDate(0, 0, -2)
		in := &model.UpdateActionInput{EndDate: &bad}
		gt.Error(t, in.Validate(stored))
	})

	t.Run("empty patch is valid", func(t *testing.T) {
		in := &model.UpdateActionInput{}
		gt.NoError(t, in.Validate(stored))
	})

	t.Run("empty title rejected", func(t *testing.T) {
		empty := ""
		in := &model.UpdateActionInput{Title: &empty}
		gt.Error(t, in.Validate(stored))
	})
}

func TestListActionsFilter_Matches(t *testing.T) {
	a := &model.Action{
		Kind:                types.ActionKindGlobal,
		Status:              types.ActionStatusPending,
		Category:            "drilling",
		Responsible:         "U1",
		ResponsibleFollowup: "U2",
	}

	t.Run("responsible matches either field", func(t *testing.T) {
		f := &model.ListActionsFilter{Responsible: "U2"}
		gt.Bool(t, f.Matches(a)).True()
		f = &model.ListActionsFilter{Responsible: "U3"}
		gt.Bool(t, f.Matches(a)).False()
	})

	t.Run("all set fields must match", func(t *testing.T) {
		f := &model.ListActionsFilter{Category: "drilling", Status: types.ActionStatusCompleted}
		gt.Bool(t, f.Matches(a)).False()
	})
}
