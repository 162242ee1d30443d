package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"gatefold.io/internal/access"
	"gatefold.io/internal/obs"
	"gatefold.io/internal/product"
	"gatefold.io/internal/staff"
	"gatefold.io/internal/stream"
	"gatefold.io/internal/telemetry"
)

// ReadyProbe reports readiness by pinging the database when one is
// configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the access core.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	accessSvc  *access.Service
	resolver   *access.Resolver
	telemetry  *telemetry.Service
	staffSvc   *staff.Service
	catalog    product.Catalog
	feed       *stream.Stream

	sessionTTL   time.Duration
	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

// New wires the API over its collaborators.
func New(rp ReadyProbe, version string, accessSvc *access.Service, resolver *access.Resolver,
	telemetrySvc *telemetry.Service, staffSvc *staff.Service, catalog product.Catalog,
	feed *stream.Stream) *API {

	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		accessSvc:    accessSvc,
		resolver:     resolver,
		telemetry:    telemetrySvc,
		staffSvc:     staffSvc,
		catalog:      catalog,
		feed:         feed,
		sessionTTL:   12 * time.Hour,
		rateBurst:    40,
		ratePerSec:   20,
		maxBodyBytes: 1 << 20,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/tokens", a.handleTokens)
	a.mux.HandleFunc("/v1/tokens/refresh", a.handleTokenRefresh)
	a.mux.HandleFunc("/v1/products/", a.handleProduct)
	a.mux.HandleFunc("/v1/access", a.handleAccess)
	a.mux.HandleFunc("/v1/actions", a.handleActions)
	a.mux.HandleFunc("/v1/stream/engagement", a.Stream)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// SetSessionTTL overrides the staff session lifetime.
func (a *API) SetSessionTTL(ttl time.Duration) {
	if ttl > 0 {
		a.sessionTTL = ttl
	}
}

// SetRateLimit overrides the per-IP rate limit.
func (a *API) SetRateLimit(burst, perSecond int) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSecond > 0 {
		a.ratePerSec = perSecond
	}
}

// SetMaxBodyBytes overrides the request body cap.
func (a *API) SetMaxBodyBytes(n int64) {
	if n > 0 {
		a.maxBodyBytes = n
	}
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withSession(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
