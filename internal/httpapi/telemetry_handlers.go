package httpapi

import (
	"net/http"

	"gatefold.io/internal/audit"
	"gatefold.io/internal/obs"
	"gatefold.io/internal/stream"
	"gatefold.io/internal/telemetry"
)

type recordVisitRequest struct {
	ProductID    string `json:"product_id"`
	AccessMethod string `json:"access_method"`
	ChannelID    string `json:"channel_id"`
	ChannelName  string `json:"channel_name"`
	SessionID    string `json:"session_id"`
	VisitorID    string `json:"visitor_id"`
	Referrer     string `json:"referrer"`
	UTMSource    string `json:"utm_source"`
	UTMMedium    string `json:"utm_medium"`
	UTMCampaign  string `json:"utm_campaign"`
	Country      string `json:"country"`
	DeviceType   string `json:"device_type"`
}

type recordVisitResponse struct {
	AccessID      string `json:"access_id"`
	IsUniqueVisit bool   `json:"is_unique_visit"`
}

func (a *API) handleAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req recordVisitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// IP and user agent are taken from the connection, not the payload.
	event, err := a.telemetry.RecordVisit(r.Context(), telemetry.Visit{
		ProductID:    req.ProductID,
		AccessMethod: telemetry.AccessMethod(req.AccessMethod),
		ChannelID:    req.ChannelID,
		ChannelName:  req.ChannelName,
		SessionID:    req.SessionID,
		VisitorID:    req.VisitorID,
		Context: telemetry.VisitContext{
			IP:          clientIP(r),
			UserAgent:   r.UserAgent(),
			Referrer:    req.Referrer,
			UTMSource:   req.UTMSource,
			UTMMedium:   req.UTMMedium,
			UTMCampaign: req.UTMCampaign,
			Country:     req.Country,
			DeviceType:  req.DeviceType,
		},
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	obs.VisitRecorded(event.IsUniqueVisit)
	audit.LogEvent(r.Context(), "access.visit", map[string]any{
		"access_id":  event.ID,
		"product_id": event.ProductID,
		"org_id":     event.OrgID,
		"unique":     event.IsUniqueVisit,
	})
	if a.feed != nil {
		a.feed.Publish(stream.VisitEvent{
			ProductID:    event.ProductID,
			OrgID:        event.OrgID,
			AccessMethod: string(event.AccessMethod),
			ChannelID:    event.ChannelID,
			ChannelName:  event.ChannelName,
			UniqueVisit:  event.IsUniqueVisit,
			DeviceType:   event.Context.DeviceType,
			Country:      event.Context.Country,
			Timestamp:    event.CreatedAt,
		})
	}
	writeJSON(w, http.StatusCreated, recordVisitResponse{
		AccessID:      event.ID,
		IsUniqueVisit: event.IsUniqueVisit,
	})
}

type recordActionRequest struct {
	AccessID     string            `json:"access_id"`
	ProductID    string            `json:"product_id"`
	ActionType   string            `json:"action_type"`
	ActionTarget string            `json:"action_target"`
	Metadata     map[string]string `json:"metadata"`
}

type recordActionResponse struct {
	ID string `json:"id"`
}

func (a *API) handleActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req recordActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	event, err := a.telemetry.RecordAction(r.Context(), telemetry.Action{
		AccessID:     req.AccessID,
		ProductID:    req.ProductID,
		ActionType:   telemetry.ActionType(req.ActionType),
		ActionTarget: req.ActionTarget,
		Metadata:     req.Metadata,
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	obs.ActionRecorded(string(event.ActionType))
	audit.LogEvent(r.Context(), "access.action", map[string]any{
		"action_id":  event.ID,
		"access_id":  event.AccessID,
		"product_id": event.ProductID,
		"org_id":     event.OrgID,
		"type":       string(event.ActionType),
	})
	writeJSON(w, http.StatusCreated, recordActionResponse{ID: event.ID})
}
