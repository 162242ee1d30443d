package httpapi

import (
	"net/http"
	"strings"

	"gatefold.io/internal/staff"
)

// withSession attaches the staff principal to the context when the
// request carries a valid bearer session. Requests without a session,
// or with an invalid one, pass through unauthenticated; handlers that
// require a principal reject them individually. Buyer-facing endpoints
// never need a session.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := staff.ParseSessionToken(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		p := staff.Principal{UserID: claims.Subject, OrgID: claims.OrgID}
		next.ServeHTTP(w, r.WithContext(staff.ContextWithPrincipal(r.Context(), p)))
	})
}

// requirePrincipal fetches the staff principal or writes a 401.
func (a *API) requirePrincipal(w http.ResponseWriter, r *http.Request) (staff.Principal, bool) {
	p, ok := staff.PrincipalFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer realm="gatefold"`)
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return staff.Principal{}, false
	}
	return p, true
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
