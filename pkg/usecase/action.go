package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/petroops-lab/derrick/pkg/domain/interfaces"
	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/service/fanout"
	"github.com/petroops-lab/derrick/pkg/utils/errutil"
)

// ActionUseCase owns the action lifecycle: create, patch, status moves,
// delete, and the cached read paths. Every mutation runs its task
// derivation synchronously and invalidates the action cache namespace
// before returning.
type ActionUseCase struct {
	repo       interfaces.Repository
	syncer     *TaskSyncService
	fanout     fanout.Service
	cache      *QueryCache
	locks      *actionLocker
	categories map[string]struct{}
}

// NewActionUseCase wires the action lifecycle over its collaborators. fanout
// may be nil (no notifications); cache may be nil (no read caching); an empty
// category list accepts any category.
func NewActionUseCase(repo interfaces.Repository, syncer *TaskSyncService, fo fanout.Service, cache *QueryCache, categories []string) *ActionUseCase {
	uc := &ActionUseCase{
		repo:   repo,
		syncer: syncer,
		fanout: fo,
		cache:  cache,
		locks:  newActionLocker(),
	}
	if len(categories) > 0 {
		uc.categories = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			uc.categories[c] = struct{}{}
		}
	}
	return uc
}

// checkCategory rejects categories outside the configured workspace set
func (uc *ActionUseCase) checkCategory(category string) error {
	if uc.categories == nil {
		return nil
	}
	if _, ok := uc.categories[category]; !ok {
		return goerr.Wrap(model.ErrInvalidInput, "unknown category",
			goerr.V("category", category))
	}
	return nil
}

// Create validates the payload, resolves every referenced user, persists the
// action and synchronously derives its tasks. Assignment notifications are
// persisted before returning; a failed notification write fails the create
// (the already-written action and tasks stay in place). Only the realtime
// push behind the fanout is best-effort.
func (uc *ActionUseCase) Create(ctx context.Context, input *model.CreateActionInput) (*model.Action, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(input.Category); err != nil {
		return nil, err
	}
	if err := uc.resolveUsers(ctx, input.Manager, input.Responsible, input.ResponsibleFollowup); err != nil {
		return nil, err
	}
	if input.ParentActionID != 0 {
		if err := uc.checkParent(ctx, input.ParentActionID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = types.ActionStatusPending
	}

	created, err := uc.repo.Action().Create(ctx, &model.Action{
		Kind:                input.Kind,
		Title:               input.Title,
		Content:             input.Content,
		Source:              input.Source,
		Manager:             input.Manager,
		Responsible:         input.Responsible,
		ResponsibleFollowup: input.ResponsibleFollowup,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		Status:              status,
		Category:            input.Category,
		ProjectID:           input.ProjectID,
		ParentActionID:      input.ParentActionID,
		NeedsValidation:     input.NeedsValidation,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create action")
	}

	if _, err := uc.syncer.DeriveFrom(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "action created but task derivation failed",
			goerr.V(ActionIDKey, created.ID))
	}

	uc.invalidate(ctx)
	if err := uc.notifyAssigned(ctx, created); err != nil {
		return nil, err
	}

	return created, nil
}

// Update applies a sparse patch to the action. Source and Manager always keep
// their stored values. Derived tasks are reconciled before the call returns,
// and each changed dimension (assignment, status, content) produces its own
// notification.
func (uc *ActionUseCase) Update(ctx context.Context, id types.ActionID, input *model.UpdateActionInput) (*model.Action, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	stored, err := uc.getAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(stored); err != nil {
		return nil, err
	}

	patched := stored.Clone()
	applyActionPatch(patched, input)

	if input.Category != nil {
		if err := uc.checkCategory(patched.Category); err != nil {
			return nil, err
		}
	}
	if patched.Responsible != stored.Responsible || patched.ResponsibleFollowup != stored.ResponsibleFollowup {
		if err := uc.resolveUsers(ctx, patched.Responsible, patched.ResponsibleFollowup); err != nil {
			return nil, err
		}
	}

	diff := diffActions(stored, patched)
	if diff.empty() {
		return stored, nil
	}

	updated, err := uc.repo.Action().Update(ctx, patched)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V(ActionIDKey, id))
	}

	if err := uc.syncer.Reconcile(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "action updated but task reconciliation failed",
			goerr.V(ActionIDKey, id))
	}

	uc.notifyChanged(ctx, updated, diff)
	uc.invalidate(ctx)

	return updated, nil
}

// UpdateStatus moves the action to the given status. Moving to completed
// forces every derived task to done in the same reconcile pass.
func (uc *ActionUseCase) UpdateStatus(ctx context.Context, id types.ActionID, status types.ActionStatus) (*model.Action, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	stored, err := uc.getAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !status.IsValidFor(stored.Kind) {
		return nil, goerr.Wrap(model.ErrInvalidInput, "invalid action status",
			goerr.V("status", status), goerr.V("kind", stored.Kind))
	}
	if stored.Status == status {
		return stored, nil
	}

	patched := stored.Clone()
	patched.Status = status

	updated, err := uc.repo.Action().Update(ctx, patched)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action status", goerr.V(ActionIDKey, id))
	}

	if err := uc.syncer.Reconcile(ctx, updated); err != nil {
		return nil, goerr.Wrap(err, "status updated but task reconciliation failed",
			goerr.V(ActionIDKey, id))
	}

	uc.notifyChanged(ctx, updated, actionDiff{statusChanged: true})
	uc.invalidate(ctx)

	return updated, nil
}

// Delete removes the action and every task derived from it. Tasks go first so
// an interrupted delete never leaves orphaned tasks behind a missing action.
// The deleted action is returned as the response payload.
func (uc *ActionUseCase) Delete(ctx context.Context, id types.ActionID) (*model.Action, error) {
	unlock := uc.locks.Lock(id)
	defer unlock()

	stored, err := uc.getAction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.syncer.DeleteFor(ctx, id); err != nil {
		return nil, err
	}
	if err := uc.repo.Action().Delete(ctx, id); err != nil {
		return nil, goerr.Wrap(err, "failed to delete action", goerr.V(ActionIDKey, id))
	}

	uc.invalidate(ctx)
	if err := uc.notifyDeleted(ctx, stored); err != nil {
		return nil, err
	}

	return stored, nil
}

// Get retrieves one action through the read cache
func (uc *ActionUseCase) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	return readThrough(ctx, uc.cache, actionCacheNamespace, "get", id,
		func(ctx context.Context) (*model.Action, error) {
			return uc.getAction(ctx, id)
		})
}

// List retrieves actions matching the equality filter, newest first, through
// the read cache
func (uc *ActionUseCase) List(ctx context.Context, filter *model.ListActionsFilter) ([]*model.Action, error) {
	if filter == nil {
		filter = &model.ListActionsFilter{}
	}
	return readThrough(ctx, uc.cache, actionCacheNamespace, "list", filter,
		func(ctx context.Context) ([]*model.Action, error) {
			actions, err := uc.repo.Action().List(ctx, filter)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to list actions")
			}
			return actions, nil
		})
}

// Search runs a paginated search: case-insensitive substring on title and
// content, equality on category and project, and a responsible match against
// either responsible field.
func (uc *ActionUseCase) Search(ctx context.Context, input *model.SearchActionsInput) (*model.SearchResult, error) {
	if input == nil {
		input = &model.SearchActionsInput{}
	}
	input.Normalize()

	return readThrough(ctx, uc.cache, actionCacheNamespace, "search", input,
		func(ctx context.Context) (*model.SearchResult, error) {
			return uc.searchActions(ctx, input)
		})
}

func (uc *ActionUseCase) searchActions(ctx context.Context, input *model.SearchActionsInput) (*model.SearchResult, error) {
	candidates, err := uc.repo.Action().List(ctx, &model.ListActionsFilter{
		Category:    input.Category,
		ProjectID:   input.ProjectID,
		Responsible: input.Responsible,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search actions")
	}

	matched := candidates
	if term := strings.ToLower(input.SearchTerm); term != "" {
		matched = matched[:0:0]
		for _, a := range candidates {
			if strings.Contains(strings.ToLower(a.Title), term) ||
				strings.Contains(strings.ToLower(a.Content), term) {
				matched = append(matched, a)
			}
		}
	}

	total := len(matched)
	pages := (total + input.Limit - 1) / input.Limit
	skip := (input.Page - 1) * input.Limit

	page := []*model.Action{}
	if skip < total {
		end := skip + input.Limit
		if end > total {
			end = total
		}
		page = matched[skip:end]
	}

	return &model.SearchResult{
		Actions: page,
		Pagination: model.Pagination{
			Total: total,
			Page:  input.Page,
			Limit: input.Limit,
			Pages: pages,
		},
	}, nil
}

// getAction loads an action, mapping a missing document to ErrActionNotFound
// and keeping store failures distinct so they surface as 5xx, not 404
func (uc *ActionUseCase) getAction(ctx context.Context, id types.ActionID) (*model.Action, error) {
	action, err := uc.repo.Action().Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrActionNotFound, "action not found", goerr.V(ActionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to load action", goerr.V(ActionIDKey, id))
	}
	return action, nil
}

// resolveUsers checks every non-empty user reference against the user store
func (uc *ActionUseCase) resolveUsers(ctx context.Context, ids ...types.UserID) error {
	seen := make(map[types.UserID]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uc.repo.User().Get(ctx, id); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrUserNotFound, "referenced user does not exist",
					goerr.V(UserIDKey, id))
			}
			return goerr.Wrap(err, "failed to resolve user", goerr.V(UserIDKey, id))
		}
	}
	return nil
}

// checkParent enforces the one-level nesting rule for global sub-actions
func (uc *ActionUseCase) checkParent(ctx context.Context, parentID types.ActionID) error {
	parent, err := uc.repo.Action().Get(ctx, parentID)
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(model.ErrInvalidInput, "parent action does not exist",
				goerr.V(ActionIDKey, parentID))
		}
		return goerr.Wrap(err, "failed to load parent action", goerr.V(ActionIDKey, parentID))
	}
	if parent.Kind != types.ActionKindGlobal {
		return goerr.Wrap(model.ErrInvalidInput, "parent action must be global kind",
			goerr.V(ActionIDKey, parentID))
	}
	if parent.ParentActionID != 0 {
		return goerr.Wrap(model.ErrInvalidInput, "sub-actions nest one level only",
			goerr.V(ActionIDKey, parentID))
	}
	return nil
}

// actionDiff classifies an update into the three notification dimensions
type actionDiff struct {
	responsibleChanged bool
	followupChanged    bool
	statusChanged      bool
	contentChanged     bool
}

func (d actionDiff) empty() bool {
	return !d.responsibleChanged && !d.followupChanged && !d.statusChanged && !d.contentChanged
}

func diffActions(before, after *model.Action) actionDiff {
	return actionDiff{
		responsibleChanged: before.Responsible != after.Responsible,
		followupChanged:    before.ResponsibleFollowup != after.ResponsibleFollowup,
		statusChanged:      before.Status != after.Status,
		contentChanged: before.Title != after.Title ||
			before.Content != after.Content ||
			!before.StartDate.Equal(after.StartDate) ||
			!before.EndDate.Equal(after.EndDate) ||
			before.Category != after.Category ||
			before.NeedsValidation != after.NeedsValidation,
	}
}

func applyActionPatch(a *model.Action, in *model.UpdateActionInput) {
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Content != nil {
		a.Content = *in.Content
	}
	if in.Responsible != nil {
		a.Responsible = *in.Responsible
	}
	if in.ResponsibleFollowup != nil {
		a.ResponsibleFollowup = *in.ResponsibleFollowup
	}
	if in.StartDate != nil {
		a.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		a.EndDate = *in.EndDate
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Category != nil {
		a.Category = *in.Category
	}
	if in.NeedsValidation != nil {
		a.NeedsValidation = *in.NeedsValidation
	}
}

func actionMetadata(a *model.Action) map[string]string {
	return map[string]string{
		"action_id": fmt.Sprintf("%d", a.ID),
		"title":     a.Title,
	}
}

// notifyAssigned tells each responsible party about their new assignment.
// The persisted notification write is part of the create path, so its
// failure propagates.
func (uc *ActionUseCase) notifyAssigned(ctx context.Context, a *model.Action) error {
	if uc.fanout == nil {
		return nil
	}

	inputs := []*fanout.Input{{
		UserID:   a.Responsible,
		Type:     types.NotificationActionAssigned,
		Message:  fmt.Sprintf("You are responsible for %q", a.Title),
		Metadata: actionMetadata(a),
	}}
	if a.ResponsibleFollowup != "" {
		inputs = append(inputs, &fanout.Input{
			UserID:   a.ResponsibleFollowup,
			Type:     types.NotificationActionAssignedFollowup,
			Message:  fmt.Sprintf("You follow up on %q", a.Title),
			Metadata: actionMetadata(a),
		})
	}

	if err := uc.fanout.NotifyMany(ctx, inputs); err != nil {
		return goerr.Wrap(err, "failed to persist assignment notifications",
			goerr.V(ActionIDKey, a.ID))
	}
	return nil
}

// notifyChanged emits at most one notification per changed dimension:
// assignment goes to the newly assigned user, status and content changes go
// to the current responsible parties.
func (uc *ActionUseCase) notifyChanged(ctx context.Context, a *model.Action, diff actionDiff) {
	if uc.fanout == nil {
		return
	}

	var inputs []*fanout.Input
	if diff.responsibleChanged {
		inputs = append(inputs, &fanout.Input{
			UserID:   a.Responsible,
			Type:     types.NotificationActionAssigned,
			Message:  fmt.Sprintf("You are now responsible for %q", a.Title),
			Metadata: actionMetadata(a),
		})
	}
	if diff.followupChanged && a.ResponsibleFollowup != "" {
		inputs = append(inputs, &fanout.Input{
			UserID:   a.ResponsibleFollowup,
			Type:     types.NotificationActionAssignedFollowup,
			Message:  fmt.Sprintf("You now follow up on %q", a.Title),
			Metadata: actionMetadata(a),
		})
	}
	if diff.statusChanged {
		for _, userID := range a.Responsibles() {
			inputs = append(inputs, &fanout.Input{
				UserID:   userID,
				Type:     types.NotificationActionStatusChanged,
				Message:  fmt.Sprintf("%q moved to %s", a.Title, a.Status),
				Metadata: actionMetadata(a),
			})
		}
	}
	if diff.contentChanged {
		for _, userID := range a.Responsibles() {
			inputs = append(inputs, &fanout.Input{
				UserID:   userID,
				Type:     types.NotificationActionContentChanged,
				Message:  fmt.Sprintf("%q was updated", a.Title),
				Metadata: actionMetadata(a),
			})
		}
	}

	if len(inputs) == 0 {
		return
	}
	if err := uc.fanout.NotifyMany(ctx, dedupeInputs(inputs)); err != nil {
		errutil.Handle(ctx, err, "failed to deliver change notifications")
	}
}

// notifyDeleted records the deletion for each responsible party. As on the
// create path, the notification write failure propagates.
func (uc *ActionUseCase) notifyDeleted(ctx context.Context, a *model.Action) error {
	if uc.fanout == nil {
		return nil
	}

	inputs := make([]*fanout.Input, 0, 2)
	for _, userID := range a.Responsibles() {
		inputs = append(inputs, &fanout.Input{
			UserID:   userID,
			Type:     types.NotificationActionDeleted,
			Message:  fmt.Sprintf("%q was deleted", a.Title),
			Metadata: actionMetadata(a),
		})
	}
	if err := uc.fanout.NotifyMany(ctx, inputs); err != nil {
		return goerr.Wrap(err, "failed to persist deletion notifications",
			goerr.V(ActionIDKey, a.ID))
	}
	return nil
}

// dedupeInputs drops duplicate (user, type) deliveries, keeping first
func dedupeInputs(inputs []*fanout.Input) []*fanout.Input {
	type key struct {
		userID types.UserID
		typ    types.NotificationType
	}
	seen := make(map[key]struct{}, len(inputs))
	out := inputs[:0:0]
	for _, in := range inputs {
		k := key{userID: in.UserID, typ: in.Type}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, in)
	}
	return out
}

// invalidate drops the action cache namespace after a mutation. A failed
// invalidation is logged; readers then see at most TTL-stale data.
func (uc *ActionUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, actionCacheNamespace); err != nil {
		errutil.Handle(ctx, err, "failed to invalidate action cache")
	}
}
