package httpapi

import (
	"net/http"
	"strings"

	"gatefold.io/internal/access"
	"gatefold.io/internal/obs"
	"gatefold.io/internal/staff"
)

const accessInfoKey = "_access_info"

func (a *API) handleProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	if slug == "" || strings.Contains(slug, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	prod, err := a.catalog.FindBySlug(r.Context(), slug)
	if err != nil {
		a.handleDomainError(w, r, err)
		return
	}

	query := r.URL.Query()
	req := access.Request{
		MerchantView: merchantViewRequested(query.Get("merchant")),
		ProductOrgID: prod.OrgID,
		TokenSecret:  query.Get("token"),
	}
	if p, ok := staff.PrincipalFromContext(r.Context()); ok {
		req.UserID = p.UserID
	}

	decision := a.resolver.Resolve(r.Context(), req)
	obs.Resolution(decision.Level.String(), string(decision.Source))

	out := access.FilterProduct(prod.Fields, decision.Level)
	out["slug"] = prod.Slug
	out[accessInfoKey] = decision
	writeJSON(w, http.StatusOK, out)
}

func merchantViewRequested(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}
