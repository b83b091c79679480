package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/praekeltfoundation/healthcheckbot/internal/model"
	"github.com/praekeltfoundation/healthcheckbot/internal/service"
	"github.com/praekeltfoundation/healthcheckbot/internal/transport/rest/middleware"
)

// WebhookHandler adapts the hosting framework's action webhook to the action
// registry.
type WebhookHandler struct {
	actions *service.ActionService
}

func NewWebhookHandler(actions *service.ActionService) *WebhookHandler {
	return &WebhookHandler{actions: actions}
}

type actionRequest struct {
	NextAction string        `json:"next_action"`
	SenderID   string        `json:"sender_id"`
	Tracker    model.Tracker `json:"tracker"`
}

type actionResponse struct {
	Events    []model.Event  `json:"events"`
	Responses []wireResponse `json:"responses"`
}

// wireResponse flattens template vars into the response object, the way the
// framework expects dispatcher messages.
type wireResponse struct {
	Template string
	Vars     map[string]string
}

func (r wireResponse) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Vars)+1)
	m["template"] = r.Template
	for k, v := range r.Vars {
		m[k] = v
	}
	return json.Marshal(m)
}

// Run handles POST /webhook.
func (h *WebhookHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tracker.SenderID == "" {
		req.Tracker.SenderID = req.SenderID
	}

	events, responses, err := h.actions.Run(r.Context(), req.NextAction, &req.Tracker)
	if err != nil {
		if errors.Is(err, service.ErrUnknownAction) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		// Partial results still go back to the user; the failure is for
		// the operator.
		if caller := middleware.GetCaller(r.Context()); caller != "" {
			log.Printf("[Webhook] %s from %s failed: %v", req.NextAction, caller, err)
		} else {
			log.Printf("[Webhook] %s failed: %v", req.NextAction, err)
		}
		if len(events) == 0 && len(responses) == 0 {
			writeError(w, http.StatusInternalServerError, "action failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, actionResponse{
		Events:    emptyIfNil(events),
		Responses: wireResponses(responses),
	})
}

// Health handles GET /health.
func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func wireResponses(responses []model.Response) []wireResponse {
	out := make([]wireResponse, 0, len(responses))
	for _, resp := range responses {
		out = append(out, wireResponse{Template: resp.Template, Vars: resp.Vars})
	}
	return out
}

func emptyIfNil(events []model.Event) []model.Event {
	if events == nil {
		return []model.Event{}
	}
	return events
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[Webhook] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
