package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/domain/types"
	"github.com/petroops-lab/derrick/pkg/usecase"
)

func userIDFromQuery(r *http.Request) (types.UserID, error) {
	userID := types.UserID(r.URL.Query().Get("user"))
	if userID == "" {
		return "", goerr.Wrap(model.ErrInvalidInput, "user query parameter is required")
	}
	return userID, nil
}

func listNotificationsHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		notifications, err := uc.ListForUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"notifications": notifications})
	}
}

func countUnreadHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		count, err := uc.CountUnread(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"count": count})
	}
}

func markReadHandler(uc *usecase.NotificationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.NotificationID(chi.URLParam(r, "notificationID"))
		if id == "" {
			writeError(w, r, goerr.Wrap(model.ErrInvalidInput, "notification ID is required"))
			return
		}

		if err := uc.MarkRead(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
	}
}
