package handlers

import (
	"net/http"
	"time"

	"github.com/tsumo-app/tsumo-server/middleware"
	"github.com/tsumo-app/tsumo-server/services"
	"github.com/tsumo-app/tsumo-server/stats"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(ss services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: ss,
	}
}

// GetMyStatistics returns the authenticated user's monthly statistics.
// The month query parameter is "2006-01" formatted and defaults to the
// current month; filter defaults to all game types.
func (h *StatsHandler) GetMyStatistics(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	month := time.Now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		month = parsed
	}

	filter := stats.FilterAll
	switch raw := stats.GameFilter(r.URL.Query().Get("filter")); raw {
	case stats.FilterFourPlayer, stats.FilterThreePlayer, stats.FilterFree:
		filter = raw
	}

	statistics, err := h.statsService.MonthlyStatistics(r.Context(), currentUserID, month, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"statistics": statistics,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
