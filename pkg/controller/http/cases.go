package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/domain/types"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/errutil"
	"github.com/NofaBC/TechSupport-AI/pkg/utils/logging"
)

type createCaseRequest struct {
	Subject       string `json:"subject"`
	Product       string `json:"product"`
	Category      string `json:"category"`
	Language      string `json:"language"`
	Severity      string `json:"severity"`
	CustomerPhone string `json:"customer_phone"`
}

type caseResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Subject   string    `json:"subject"`
	Product   string    `json:"product"`
	Category  string    `json:"category"`
	Language  string    `json:"language"`
	Severity  string    `json:"severity"`
	Status    string    `json:"status"`
	Tier      string    `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCaseResponse(c *model.Case) caseResponse {
	return caseResponse{
		ID:        string(c.ID),
		TenantID:  c.TenantID,
		Subject:   c.Subject,
		Product:   c.Product,
		Category:  c.Category,
		Language:  c.Language,
		Severity:  string(c.Severity),
		Status:    string(c.Status),
		Tier:      string(c.Tier),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Server) createCaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantID")

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid case payload"), http.StatusBadRequest)
		return
	}

	severity := types.Severity(req.Severity)
	if req.Severity != "" && !severity.IsValid() {
		errutil.HandleHTTP(ctx, w, goerr.New("invalid severity", goerr.V("severity", req.Severity)), http.StatusBadRequest)
		return
	}

	created, err := s.repo.Case().Create(ctx, tenantID, &model.Case{
		Subject:       req.Subject,
		Product:       req.Product,
		Category:      req.Category,
		Language:      req.Language,
		Severity:      severity,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toCaseResponse(created))
}

func (s *Server) getCaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantID")
	caseID := model.CaseID(chi.URLParam(r, "caseID"))

	c, err := s.repo.Case().Get(ctx, tenantID, caseID)
	if err != nil {
		if errors.Is(err, model.ErrCaseNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

type timelineEventResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) timelineHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantID")
	caseID := model.CaseID(chi.URLParam(r, "caseID"))

	if _, err := s.repo.Case().Get(ctx, tenantID, caseID); err != nil {
		if errors.Is(err, model.ErrCaseNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	events, err := s.repo.Case().ListTimeline(ctx, tenantID, caseID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	resp := make([]timelineEventResponse, len(events))
	for i, e := range events {
		resp[i] = timelineEventResponse{
			ID:          string(e.ID),
			Type:        string(e.Type),
			Description: e.Description,
			Actor:       e.Actor,
			CreatedAt:   e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": resp})
}

type messageRequest struct {
	Message string `json:"message"`
	History []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"history"`
	PlaybookState  *playbookState `json:"playbook_state"`
	FailedAttempts int            `json:"failed_attempts"`
}

type messageResponse struct {
	Message          string             `json:"message"`
	ShouldEscalate   bool               `json:"should_escalate"`
	EscalationLevel  string             `json:"escalation_level,omitempty"`
	EscalationReason string             `json:"escalation_reason,omitempty"`
	Action           *actionResponse    `json:"action,omitempty"`
	Sources          []citationResponse `json:"sources,omitempty"`
	CaseStatus       string             `json:"case_status"`
	PlaybookState    *playbookState     `json:"playbook_state,omitempty"`
	FailedAttempts   int                `json:"failed_attempts"`
}

// playbookState is the wire form of a playbook run. The agents keep no
// session state, so the client echoes this back on the next turn to
// resume the run where it left off.
type playbookState struct {
	PlaybookID     string            `json:"playbook_id"`
	CurrentStepID  string            `json:"current_step_id"`
	StepAttempts   map[string]int    `json:"step_attempts,omitempty"`
	CompletedSteps []string          `json:"completed_steps,omitempty"`
	FailedSteps    []string          `json:"failed_steps,omitempty"`
	Variables      map[string]string `json:"variables,omitempty"`
	Outcome        string            `json:"outcome,omitempty"`
}

func (p *playbookState) toModel() (*model.ExecutionState, error) {
	if p == nil {
		return nil, nil
	}
	if p.PlaybookID == "" {
		return nil, goerr.New("playbook_state requires playbook_id")
	}
	outcome := types.PlaybookInProgress
	if p.Outcome != "" {
		outcome = types.PlaybookOutcome(p.Outcome)
		if !outcome.IsValid() {
			return nil, goerr.New("invalid playbook outcome", goerr.V("outcome", p.Outcome))
		}
	}
	state := &model.ExecutionState{
		PlaybookID:     p.PlaybookID,
		CurrentStepID:  p.CurrentStepID,
		StepAttempts:   p.StepAttempts,
		CompletedSteps: p.CompletedSteps,
		FailedSteps:    p.FailedSteps,
		Variables:      p.Variables,
		Outcome:        outcome,
	}
	if state.StepAttempts == nil {
		state.StepAttempts = make(map[string]int)
	}
	if state.Variables == nil {
		state.Variables = make(map[string]string)
	}
	return state, nil
}

func toPlaybookState(s *model.ExecutionState) *playbookState {
	if s == nil {
		return nil
	}
	return &playbookState{
		PlaybookID:     s.PlaybookID,
		CurrentStepID:  s.CurrentStepID,
		StepAttempts:   s.StepAttempts,
		CompletedSteps: s.CompletedSteps,
		FailedSteps:    s.FailedSteps,
		Variables:      s.Variables,
		Outcome:        string(s.Outcome),
	}
}

type actionResponse struct {
	Type   string            `json:"type"`
	Params map[string]string `json:"params"`
}

type citationResponse struct {
	Number int    `json:"number"`
	KBID   string `json:"kb_id"`
	DocID  string `json:"doc_id"`
}

// messageHandler runs one agent turn on a case. The case status decides
// which tier handles the message; closed cases reject new turns. The
// playbook state and failed-attempt count round-trip through the
// request and response so a run can progress across turns.
func (s *Server) messageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := chi.URLParam(r, "tenantID")
	caseID := model.CaseID(chi.URLParam(r, "caseID"))

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid message payload"), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("message is required"), http.StatusBadRequest)
		return
	}

	c, err := s.repo.Case().Get(ctx, tenantID, caseID)
	if err != nil {
		if errors.Is(err, model.ErrCaseNotFound) {
			errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	status := c.Status.Normalize()
	if status == types.CaseStatusResolved || status == types.CaseStatusEscalatedHuman {
		errutil.HandleHTTP(ctx, w,
			goerr.New("case no longer accepts agent turns", goerr.V("status", status)),
			http.StatusConflict)
		return
	}

	state, err := req.PlaybookState.toModel()
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	in := &model.AgentContext{
		TenantID:       tenantID,
		CaseID:         string(caseID),
		Message:        req.Message,
		Product:        c.Product,
		Category:       c.Category,
		Language:       c.Language,
		Severity:       c.Severity,
		Playbook:       state,
		FailedAttempts: req.FailedAttempts,
	}
	for _, m := range req.History {
		in.History = append(in.History, model.Message{Role: model.Role(m.Role), Content: m.Content})
	}

	var resp *model.AgentResponse
	if status == types.CaseStatusEscalatedL2 {
		resp, err = s.uc.Tier2.HandleTurn(ctx, in)
	} else {
		resp, err = s.uc.Tier1.HandleTurn(ctx, in)
	}
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	status = s.applyTurnOutcome(ctx, tenantID, caseID, status, req.Message, resp)

	failed := req.FailedAttempts
	if resp.Action != nil && resp.Action.Type == "execute_playbook_step" &&
		resp.Action.Params["outcome"] == string(types.StepFailure) {
		failed++
	}

	out := messageResponse{
		Message:          resp.Message,
		ShouldEscalate:   resp.ShouldEscalate,
		EscalationLevel:  string(resp.EscalationLevel),
		EscalationReason: resp.EscalationReason,
		CaseStatus:       string(status),
		PlaybookState:    toPlaybookState(in.Playbook),
		FailedAttempts:   failed,
	}
	if resp.Action != nil {
		out.Action = &actionResponse{Type: resp.Action.Type, Params: resp.Action.Params}
	}
	for _, src := range resp.Sources {
		out.Sources = append(out.Sources, citationResponse{Number: src.Number, KBID: src.KBID, DocID: src.DocID})
	}
	writeJSON(w, http.StatusOK, out)
}

// applyTurnOutcome records the turn on the case timeline and folds the
// agent's signals into the case status. Persistence failures are logged
// and do not fail the turn; the response was already produced.
func (s *Server) applyTurnOutcome(ctx context.Context, tenantID string, caseID model.CaseID, status types.CaseStatus, message string, resp *model.AgentResponse) types.CaseStatus {
	logger := logging.From(ctx)
	cases := s.repo.Case()

	addEvent := func(eventType types.TimelineEventType, description, actor string) {
		_, err := cases.AddTimelineEvent(ctx, tenantID, &model.TimelineEvent{
			CaseID:      caseID,
			Type:        eventType,
			Description: description,
			Actor:       actor,
		})
		if err != nil {
			logger.Warn("failed to record timeline event", "case_id", caseID, "error", err.Error())
		}
	}

	addEvent(types.TimelineMessageReceived, message, "customer")
	addEvent(types.TimelineAgentResponded, resp.Message, "agent")

	next := status
	switch {
	case resp.ShouldEscalate && resp.EscalationLevel == types.TierL3:
		next = types.CaseStatusEscalatedHuman
		addEvent(types.TimelineEscalated, resp.EscalationReason, "agent")
	case resp.ShouldEscalate:
		next = types.CaseStatusEscalatedL2
		addEvent(types.TimelineEscalated, resp.EscalationReason, "agent")
	case resp.Action != nil && resp.Action.Type == "resolve":
		next = types.CaseStatusResolved
		addEvent(types.TimelineResolved, resp.Action.Params["summary"], "agent")
	}

	if next == status {
		return status
	}

	// A human escalation from an open or pending case passes through
	// escalated_L2; the transition table has no direct edge.
	if next == types.CaseStatusEscalatedHuman && !status.CanTransitionTo(next) && status.CanTransitionTo(types.CaseStatusEscalatedL2) {
		updated, err := cases.UpdateStatus(ctx, tenantID, caseID, types.CaseStatusEscalatedL2)
		if err != nil {
			logger.Warn("case status transition rejected",
				"case_id", caseID, "from", status, "to", types.CaseStatusEscalatedL2, "error", err.Error())
			return status
		}
		status = updated.Status
	}

	updated, err := cases.UpdateStatus(ctx, tenantID, caseID, next)
	if err != nil {
		logger.Warn("case status transition rejected",
			"case_id", caseID, "from", status, "to", next, "error", err.Error())
		return status
	}
	return updated.Status
}
