package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/petroops-lab/derrick/pkg/service/realtime"
	"github.com/petroops-lab/derrick/pkg/utils/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// websocketHandler upgrades the connection and hands it to the hub. The user
// is identified by the `user` query parameter; notification delivery does not
// depend on this socket staying up.
func websocketHandler(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.From(r.Context()).Error("failed to upgrade websocket", "error", err)
			return
		}

		hub.Serve(r.Context(), userID, conn)
	}
}
