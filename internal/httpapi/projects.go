package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/planpilot/internal/extract"
	"github.com/ent0n29/planpilot/internal/plan"
	"github.com/ent0n29/planpilot/internal/planner"
	"github.com/ent0n29/planpilot/internal/projects"
	"github.com/ent0n29/planpilot/internal/reliability"
)

const (
	createPlanRetries = 2
	retryBackoffBase  = 500 * time.Millisecond
	retryBackoffCap   = 4 * time.Second
)

type createProjectRequest struct {
	Name        string         `json:"name"`
	Goal        string         `json:"goal"`
	Constraints map[string]any `json:"constraints,omitempty"`
	// SessionID ties the new project to an ongoing chat session so later
	// turns carry project context.
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		respondError(w, http.StatusBadRequest, "missing_goal", "goal is required")
		return
	}

	bundle, err := s.createPlanWithRetry(r, req.Goal, req.Constraints)
	if err != nil {
		respondError(w, http.StatusBadGateway, "planning_failed", err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = projectNameFromPlan(bundle.Plan, req.Goal)
	}
	doc, err := documentFromBundle(bundle)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encoding_failed", err.Error())
		return
	}

	record, err := s.store.Create(r.Context(), projects.Record{
		Name:     name,
		Goal:     req.Goal,
		Document: doc,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	if sid := strings.TrimSpace(req.SessionID); sid != "" {
		if err := s.sessions.SetCurrentProject(sid, record.ID); err != nil {
			log.Printf("project %s: bind to session %s: %v", record.ID, sid, err)
		}
	}
	respondJSON(w, http.StatusCreated, record)
}

// createPlanWithRetry retries transient gateway failures. The gateway itself
// never retries, so policy lives here at the request boundary.
func (s *Server) createPlanWithRetry(r *http.Request, goal string, constraints map[string]any) (planner.PlanBundle, error) {
	var lastErr error
	for attempt := 0; attempt <= createPlanRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-r.Context().Done():
				return planner.PlanBundle{}, r.Context().Err()
			case <-time.After(reliability.ExponentialBackoff(attempt-1, retryBackoffBase, retryBackoffCap)):
			}
		}
		bundle, err := s.pipeline.CreatePlan(r.Context(), goal, constraints)
		if err == nil {
			return bundle, nil
		}
		lastErr = err
		if !reliability.IsRetryableGatewayError(err) {
			break
		}
	}
	return planner.PlanBundle{}, lastErr
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	if records == nil {
		records = []projects.Record{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": records, "count": len(records)})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project_not_found", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "status": "deleted"})
}

type adjustProjectRequest struct {
	Adjustments map[string]any `json:"adjustments"`
}

func (s *Server) handleAdjustProject(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	var req adjustProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	if len(req.Adjustments) == 0 {
		respondError(w, http.StatusBadRequest, "missing_adjustments", "adjustments are required")
		return
	}

	current := resultFromDocument(record.Document, "project_plan")
	adjusted, err := s.pipeline.AdjustPlan(r.Context(), current, req.Adjustments)
	if err != nil {
		respondError(w, http.StatusBadGateway, "planning_failed", err.Error())
		return
	}

	fields, err := fieldsFromResult(adjusted)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encoding_failed", err.Error())
		return
	}
	if record.Document == nil {
		record.Document = make(map[string]any)
	}
	record.Document["project_plan"] = fields
	updated, err := s.store.Update(r.Context(), record)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleValidateProject(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	current := resultFromDocument(record.Document, "project_plan")
	if current.Degraded() {
		respondJSON(w, http.StatusOK, map[string]any{
			"project_id": record.ID,
			"quality":    string(current.Quality),
			"detail":     "stored plan is a degraded record and cannot be validated",
		})
		return
	}
	typed, err := plan.FromFields(current.Fields)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid_plan", err.Error())
		return
	}
	findings := plan.ValidateDependencies(typed)
	if findings == nil {
		findings = []plan.Inconsistency{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"project_id":      record.ID,
		"quality":         string(current.Quality),
		"inconsistencies": findings,
		"count":           len(findings),
	})
}

func (s *Server) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	record, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	reportType := strings.TrimSpace(r.URL.Query().Get("report_type"))
	if reportType == "" {
		reportType = "status"
	}

	project := map[string]any{
		"id":     record.ID,
		"name":   record.Name,
		"goal":   record.Goal,
		"status": record.Status,
	}
	for k, v := range record.Document {
		project[k] = v
	}
	report, err := s.pipeline.StatusReport(r.Context(), project, reportType)
	if err != nil {
		respondError(w, http.StatusBadGateway, "report_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"project_id":   record.ID,
		"report_type":  reportType,
		"report":       report,
		"generated_at": time.Now().UTC(),
	})
}

func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) (projects.Record, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	record, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			respondError(w, http.StatusNotFound, "project_not_found", err.Error())
		} else {
			respondError(w, http.StatusInternalServerError, "store_failed", err.Error())
		}
		return projects.Record{}, false
	}
	return record, true
}

// documentFromBundle normalizes a plan bundle into plain maps so stored
// documents look the same regardless of backing store.
func documentFromBundle(bundle planner.PlanBundle) (map[string]any, error) {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fieldsFromResult(res extract.Result) (map[string]any, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// resultFromDocument rehydrates a stored section as an extraction result,
// preserving the degraded marker if that is what was stored.
func resultFromDocument(doc map[string]any, key string) extract.Result {
	section, _ := doc[key].(map[string]any)
	if section == nil {
		return extract.Result{RawResponse: "", Err: extract.ErrExtractionFailed, Quality: extract.QualityDegraded}
	}
	if errVal, ok := section["error"].(string); ok && errVal == extract.ErrExtractionFailed {
		raw, _ := section["raw_response"].(string)
		return extract.Result{RawResponse: raw, Err: errVal, Quality: extract.QualityDegraded}
	}
	return extract.FromFields(section)
}

func projectNameFromPlan(res extract.Result, fallback string) string {
	if !res.Degraded() {
		if name, ok := res.Fields["project_name"].(string); ok && strings.TrimSpace(name) != "" {
			return name
		}
	}
	if len(fallback) > 60 {
		return fallback[:60]
	}
	return fallback
}
