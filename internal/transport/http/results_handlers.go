package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/reversi-server/internal/proto"
	"github.com/vovakirdan/reversi-server/internal/store"
)

const defaultResultsLimit = 20

// ResultHandlers exposes the finished-game ledger.
type ResultHandlers struct {
	store store.ResultStore
	log   *zerolog.Logger
}

// NewResultHandlers creates a new result handlers instance.
func NewResultHandlers(st store.ResultStore, logger *zerolog.Logger) *ResultHandlers {
	return &ResultHandlers{store: st, log: logger}
}

// ResultsResponse is the body of GET /results.
type ResultsResponse struct {
	Results []proto.ResultView `json:"results"`
}

// List returns recent results, most recent first.
// GET /results?limit=N
func (h *ResultHandlers) List(c *gin.Context) {
	limit := defaultResultsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "limit must be a positive integer", Code: "bad_request"})
			return
		}
		limit = n
	}

	results, err := h.store.ListResults(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list results")
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error", Code: "internal"})
		return
	}

	resp := ResultsResponse{Results: make([]proto.ResultView, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, proto.ResultView{
			ID:         r.ID,
			Room:       r.Room,
			Black:      r.Black,
			White:      r.White,
			Winner:     r.Winner,
			FinishedAt: r.FinishedAt.UnixMilli(),
		})
	}
	c.JSON(http.StatusOK, resp)
}
