package http

import (
	"fmt"
	"net/http"

	"tally/internal/core"
)

type periodInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

type summaryResponse struct {
	core.Summary
	Period periodInfo `json:"period"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, granularity, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := ownerFrom(r.Context())
	key := summaryCacheKey(owner, window, granularity)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.summaries.Summarize(r.Context(), owner, window)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := summaryResponse{
		Summary: summary,
		Period: periodInfo{
			Start: window.Start.Format(dateLayout),
			End:   window.End.Format(dateLayout),
		},
	}
	if granularity != "" {
		resp.Period.Label = core.Label(window.Start, granularity)
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

// summaryCacheKey includes the granularity because the cached response
// carries a granularity-dependent label; a custom range spanning the
// same days as a month window is a different response.
func summaryCacheKey(owner *int64, w core.Window, g core.Granularity) string {
	ownerPart := "all"
	if owner != nil {
		ownerPart = fmt.Sprintf("%d", *owner)
	}
	granularityPart := string(g)
	if granularityPart == "" {
		granularityPart = "custom"
	}
	return fmt.Sprintf("summary:%s:%s:%d:%d", ownerPart, granularityPart, w.Start.UnixMilli(), w.End.UnixMilli())
}
