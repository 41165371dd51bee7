package api

import (
	"net/http"
	"photogenie/internal/validation"
	"strconv"

	_ "photogenie/internal/events"
)

// @Summary      Get feed events
// @Description  Returns up to 100 post lifecycle events recorded after the given event ID, oldest first. Clients use it to catch up after a websocket reconnect.
// @Tags         events
// @Produce      json
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {array}   events.Event
// @Failure      400    {object}  validation.Errors
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil || sinceID < 0 {
		writeJSON(w, http.StatusBadRequest, validation.New("since", "A valid integer is required."))
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), sinceID)
	if err != nil {
		writeError(w, err, "list events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}
