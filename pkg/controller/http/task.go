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

func taskIDFromURL(r *http.Request) (types.TaskID, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(model.ErrInvalidInput, "invalid task ID", goerr.V("raw", raw))
	}
	return types.TaskID(id), nil
}

func createTaskHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input model.CreateTaskInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		created, err := uc.CreatePersonal(r.Context(), &input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, created)
	}
}

func getTaskHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		task, err := uc.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, task)
	}
}

func listTasksHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignee := types.UserID(r.URL.Query().Get("assignee"))
		if assignee == "" {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "assignee query parameter is required"))
			return
		}

		tasks, err := uc.ListByAssignee(r.Context(), assignee)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"tasks": tasks})
	}
}

func markTaskStatusHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	type request struct {
		Status types.TaskStatus `json:"status"`
		Actor  types.UserID     `json:"actor"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		updated, err := uc.MarkStatus(r.Context(), id, req.Status, req.Actor)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, updated)
	}
}

func updateTaskProgressHandler(uc *usecase.TaskUseCase) http.HandlerFunc {
	type request struct {
		Progress int `json:"progress"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := taskIDFromURL(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "invalid JSON payload"))
			return
		}

		updated, err := uc.UpdateProgress(r.Context(), id, req.Progress)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, updated)
	}
}
