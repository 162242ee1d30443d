// Package telemetry records page visits and in-page actions for published
// product pages. Events feed analytics and the engagement-refresh flow; they
// are never consulted for authorization decisions.
package telemetry

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("telemetry: not found")
	ErrMissingField = errors.New("telemetry: missing required field")
	ErrInvalidInput = errors.New("telemetry: invalid input")
)

// AccessMethod describes how the visitor reached the page.
type AccessMethod string

const (
	MethodURL    AccessMethod = "url"
	MethodQRCode AccessMethod = "qr_code"
)

// Known reports whether the method is one of the recognized values.
func (m AccessMethod) Known() bool {
	return m == MethodURL || m == MethodQRCode
}

// ActionType is the closed enumeration of in-page actions.
type ActionType string

const (
	ActionPageView         ActionType = "page_view"
	ActionFieldReveal      ActionType = "field_reveal"
	ActionDocumentView     ActionType = "document_view"
	ActionDocumentDownload ActionType = "document_download"
	ActionRFQSubmit        ActionType = "rfq_submit"
	ActionEmailClick       ActionType = "email_click"
	ActionPhoneClick       ActionType = "phone_click"
	ActionLinkClick        ActionType = "link_click"
	ActionShareClick       ActionType = "share_click"
)

var knownActions = map[ActionType]struct{}{
	ActionPageView:         {},
	ActionFieldReveal:      {},
	ActionDocumentView:     {},
	ActionDocumentDownload: {},
	ActionRFQSubmit:        {},
	ActionEmailClick:       {},
	ActionPhoneClick:       {},
	ActionLinkClick:        {},
	ActionShareClick:       {},
}

// Known reports whether the action type belongs to the closed set.
func (a ActionType) Known() bool {
	_, ok := knownActions[a]
	return ok
}

// VisitContext carries analytics-only attributes of a visit. Nothing in
// here ever influences an access decision.
type VisitContext struct {
	IP          string
	UserAgent   string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	Country     string
	DeviceType  string
}

// Visit is the inbound report of one page view.
type Visit struct {
	ProductID    string
	AccessMethod AccessMethod
	ChannelID    string
	ChannelName  string
	SessionID    string
	VisitorID    string
	Context      VisitContext
}

// AccessEvent is the persisted form of a Visit, one row per page view.
type AccessEvent struct {
	ID            string
	ProductID     string
	OrgID         string
	AccessMethod  AccessMethod
	ChannelID     string
	ChannelName   string
	SessionID     string
	VisitorID     string
	IsUniqueVisit bool
	Context       VisitContext
	CreatedAt     time.Time
}

// Action is the inbound report of one in-page action.
type Action struct {
	AccessID     string
	ProductID    string
	ActionType   ActionType
	ActionTarget string
	Metadata     map[string]string
}

// ActionEvent is the persisted form of an Action, foreign-keyed to its
// parent AccessEvent.
type ActionEvent struct {
	ID           string
	AccessID     string
	ProductID    string
	OrgID        string
	ActionType   ActionType
	ActionTarget string
	Metadata     map[string]string
	CreatedAt    time.Time
}
