package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/usecase"
)

func actionIDFromURL(r *http.Request) (types.ActionID, error) {
	raw := chi.URLParam(r, "actionID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(model.ErrInvalidInput, "invalid action ID", goerr.V("raw", raw))
	}
	return types.ActionID(id), nil
}

func createActionHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.CreateActionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		created, err := uc.Create(r.Context(), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, created)
	}
}

func getActionHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := actionIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		action, err := uc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, action)
	}
}

func listActionsHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := &model.ListActionsFilter{
			Kind:        types.ActionKind(q.Get("kind")),
			Status:      types.ActionStatus(q.Get("status")),
			Category:    q.Get("category"),
			ProjectID:   q.Get("project_id"),
			Responsible: types.UserID(q.Get("responsible")),
		}

		actions, err := uc.List(r.Context(), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"actions": actions})
	}
}

func searchActionsHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		result, err := uc.Search(r.Context(), &model.SearchActionsInput{
			SearchTerm:  q.Get("q"),
			Responsible: types.UserID(q.Get("responsible")),
			Category:    q.Get("category"),
			ProjectID:   q.Get("project_id"),
			Page:        page,
			Limit:       limit,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}

func updateActionHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := actionIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var input model.UpdateActionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		updated, err := uc.Update(r.Context(), id, &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, updated)
	}
}

func updateActionStatusHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	type request struct {
		Status types.ActionStatus `json:"status"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := actionIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		updated, err := uc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, updated)
	}
}

func deleteActionHandler(uc *usecase.ActionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := actionIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		deleted, err := uc.Delete(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, deleted)
	}
}

func listActionTasksHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := actionIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		tasks, err := uc.ListByAction(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"tasks": tasks})
	}
}
