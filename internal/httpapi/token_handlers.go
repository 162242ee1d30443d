package httpapi

import (
	"errors"
	"net/http"
	"time"

	"gatefold.io/internal/access"
	"gatefold.io/internal/audit"
	"gatefold.io/internal/obs"
	"gatefold.io/internal/product"
)

type issueTokenRequest struct {
	ProductID     string `json:"product_id"`
	ChannelID     string `json:"channel_id"`
	ChannelName   string `json:"channel_name"`
	AccessLevel   string `json:"access_level"`
	ExpiresInDays int    `json:"expires_in_days"`
	Notes         string `json:"notes"`
}

type issuedTokenResponse struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	AccessLevel   string     `json:"access_level"`
	ChannelID     string     `json:"channel_id"`
	ChannelName   string     `json:"channel_name,omitempty"`
	ExpiresInDays int        `json:"expires_in_days"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func issuedResponse(iss access.Issued) issuedTokenResponse {
	return issuedTokenResponse{
		ID:            iss.Token.ID,
		URL:           iss.URL,
		AccessLevel:   iss.Token.Level.String(),
		ChannelID:     iss.Token.ChannelID,
		ChannelName:   iss.Token.ChannelName,
		ExpiresInDays: iss.ExpiresInDays,
		ExpiresAt:     iss.Token.ExpiresAt,
	}
}

func (a *API) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	level, err := access.ParseLevel(req.AccessLevel)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown access level")
		return
	}
	if req.ProductID == "" {
		writeError(w, r, http.StatusBadRequest, "product_id is required")
		return
	}

	// Membership is enforced here, before anything is persisted: the
	// issuing member must belong to the organization that owns the
	// product.
	prod, err := a.catalog.Find(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}
		a.handleDomainError(w, r, err)
		return
	}
	if !a.staffSvc.VerifyMember(r.Context(), principal.UserID, prod.OrgID) {
		writeError(w, r, http.StatusForbidden, "not a member of the owning organization")
		return
	}

	iss, err := a.accessSvc.Issue(r.Context(), access.IssueParams{
		ProductID:     req.ProductID,
		ChannelID:     req.ChannelID,
		ChannelName:   req.ChannelName,
		Level:         level,
		ExpiresInDays: req.ExpiresInDays,
		CreatedBy:     principal.UserID,
		Notes:         req.Notes,
	})
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	obs.TokenIssued("api")
	audit.LogEvent(r.Context(), "token.issue", map[string]any{
		"token_id":   iss.Token.ID,
		"product_id": iss.Token.ProductID,
		"org_id":     iss.Token.OrgID,
		"channel_id": iss.Token.ChannelID,
		"level":      iss.Token.Level.String(),
	})
	writeJSON(w, http.StatusCreated, issuedResponse(iss))
}

type refreshTokenRequest struct {
	ProductID string `json:"product_id"`
	Email     string `json:"email"`
}

func (a *API) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req refreshTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	iss, err := a.accessSvc.Refresh(r.Context(), req.ProductID, req.Email)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	obs.TokenIssued("rfq_refresh")
	audit.LogEvent(r.Context(), "token.refresh", map[string]any{
		"token_id":   iss.Token.ID,
		"product_id": iss.Token.ProductID,
		"org_id":     iss.Token.OrgID,
		"channel_id": iss.Token.ChannelID,
	})
	writeJSON(w, http.StatusCreated, issuedResponse(iss))
}
