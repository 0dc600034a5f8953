package worker

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/reviewlens/topicforge/internal/naming"
	"github.com/reviewlens/topicforge/internal/topics"
)

// buildResponse is the body for /topics/build. Message is set only when the
// run ended early with nothing to do.
type buildResponse struct {
	OK                 bool                  `json:"ok"`
	LocationID         string                `json:"locationId"`
	CompanyID          string                `json:"companyId,omitempty"`
	Taken              int                   `json:"taken"`
	DryRun             bool                  `json:"dryRun"`
	CreatedTopics      int                   `json:"createdTopics"`
	AssignedConcepts   int                   `json:"assignedConcepts"`
	MergedIntoExisting int                   `json:"mergedIntoExisting"`
	Message            string                `json:"message,omitempty"`
	Topics             []topics.TopicPreview `json:"topics"`
	Meta               topics.Meta           `json:"meta"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// writeJSON writes a JSON response with proper error handling.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{OK: false, Error: msg})
}

// handleHealth handles health check requests. Returns 200 immediately, even
// during init. Use /ready for the full readiness check.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "starting"
	if s.ready.Load() {
		status = "ready"
	} else if err := s.GetInitError(); err != nil {
		status = "error"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"version": s.version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleReady returns 200 only when fully initialized and the database
// answers a ping.
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		if err := s.GetInitError(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Error(w, "service initializing", http.StatusServiceUnavailable)
		return
	}

	s.initMu.RLock()
	store := s.store
	s.initMu.RUnlock()
	if store != nil {
		if err := store.Ping(); err != nil {
			http.Error(w, "database unreachable: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// requireReady is middleware that returns 503 if the service isn't ready.
func (s *Service) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			if err := s.GetInitError(); err != nil {
				http.Error(w, "service initialization failed: "+err.Error(), http.StatusInternalServerError)
				return
			}
			http.Error(w, "service initializing", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleBuildTopics runs one synchronous topic build for a location.
//
//	GET /topics/build?locationId=...&companyId=...&limit=500&minTopicSize=3&dryRun=1
func (s *Service) handleBuildTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	locationID := q.Get("locationId")
	if locationID == "" {
		writeError(w, http.StatusBadRequest, "locationId is required")
		return
	}

	limit, ok := intParam(q.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	minTopicSize, ok := intParam(q.Get("minTopicSize"))
	if !ok {
		writeError(w, http.StatusBadRequest, "minTopicSize must be an integer")
		return
	}

	params := topics.BuildParams{
		LocationID:   locationID,
		CompanyID:    q.Get("companyId"),
		Limit:        limit,
		MinTopicSize: minTopicSize,
		DryRun:       q.Get("dryRun") == "1",
		Business: naming.BusinessContext{
			BusinessType: q.Get("businessType"),
			ActivityName: q.Get("activityName"),
		},
	}

	s.initMu.RLock()
	engine := s.engine
	s.initMu.RUnlock()

	result, err := engine.Build(r.Context(), params)
	if err != nil {
		if errors.Is(err, topics.ErrMissingLocation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().
			Err(err).
			Str("requestId", GetRequestID(r.Context())).
			Str("locationId", locationID).
			Msg("Topic build failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	previews := result.Topics
	if previews == nil {
		previews = []topics.TopicPreview{}
	}

	writeJSON(w, http.StatusOK, buildResponse{
		OK:                 true,
		LocationID:         result.LocationID,
		CompanyID:          result.CompanyID,
		Taken:              result.Taken,
		DryRun:             result.DryRun,
		CreatedTopics:      result.CreatedTopics,
		AssignedConcepts:   result.AssignedConcepts,
		MergedIntoExisting: result.MergedIntoExisting,
		Message:            result.Message,
		Topics:             previews,
		Meta:               result.Meta,
	})
}

// intParam parses an optional integer query parameter. An empty value is
// zero; the engine substitutes its default for zero and clamps out-of-range
// values into bounds.
func intParam(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
