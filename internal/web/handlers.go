package web

import (
	"net/http"
	"time"

	"github.com/taigaflow/taigaflow/core"
	"github.com/taigaflow/taigaflow/internal/contract"
	"github.com/taigaflow/taigaflow/schema"
)

// requestConfig clones the base config and applies the common query
// parameters shared by all data endpoints.
func (s *Server) requestConfig(r *http.Request) (*contract.Config, error) {
	cfg := s.baseCfg.Clone()

	if p := r.URL.Query().Get("project"); p != "" {
		cfg.ProjectSlug = p
	}
	if cfg.ProjectSlug == "" {
		return nil, contract.ValidationError{Field: "project", Reason: "project slug is required"}
	}

	if g := r.URL.Query().Get("granularity"); g != "" {
		granularity, ok := schema.NormalizeGranularity(g)
		if !ok {
			return nil, contract.ValidationError{Field: "granularity", Reason: "expected day, week or month"}
		}
		cfg.Granularity = granularity
	}

	if states := r.URL.Query().Get("states"); states != "" {
		cfg.States = contract.SplitStateList(states)
		if len(cfg.States) == 0 {
			return nil, contract.ValidationError{Field: "states", Reason: "expected comma-separated state names"}
		}
	}

	if start := r.URL.Query().Get("start"); start != "" {
		t, err := time.Parse(contract.DateFormat, start)
		if err != nil {
			return nil, contract.ValidationError{Field: "start", Reason: "expected YYYY-MM-DD"}
		}
		cfg.StartTime = t
	}
	if end := r.URL.Query().Get("end"); end != "" {
		t, err := time.Parse(contract.DateFormat, end)
		if err != nil {
			return nil, contract.ValidationError{Field: "end", Reason: "expected YYYY-MM-DD"}
		}
		cfg.EndTime = t
	}
	// Equality is allowed: a single-boundary window yields one bucket.
	if cfg.GetWindowStartTime().After(cfg.GetWindowEndTime()) {
		return nil, contract.ValidationError{Field: "start", Reason: "start date must not be after end date"}
	}

	return cfg, nil
}

// getStatuses returns the project's workflow states in board order.
func (s *Server) getStatuses(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	project, statuses, err := core.GetWorkflowResults(core.WithSuppressHeader(r.Context()), cfg, s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data": map[string]any{
			"project":  project,
			"statuses": statuses,
		},
		"timestamp": time.Now().UTC(),
	})
}

// getCFD computes and returns the flow dataset for the requested window.
func (s *Server) getCFD(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	output, err := core.GetGenerateResults(core.WithSuppressHeader(r.Context()), cfg, s.mgr, s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"data":   output.Result,
		"stats": map[string]int{
			"items":   output.Result.ItemCount,
			"periods": len(output.Result.Rows),
		},
		"timestamp": time.Now().UTC(),
	})
}

// getSummary returns condensed flow numbers for the most recent month.
func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, _, err := core.GetSummaryResults(core.WithSuppressHeader(r.Context()), cfg, s.mgr, s.logger, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"data":      summary,
		"timestamp": time.Now().UTC(),
	})
}
