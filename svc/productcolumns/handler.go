package productcolumns

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/response"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenant"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenantdb"
)

// Handler exposes the column endpoints. All routes assume the tenant
// middleware already ran: the request context carries a verified Identity and
// cross-tenant access was rejected.
type Handler struct {
	service *Service
}

// NewHandler creates the column HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the column route group.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.upsert)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/sub/{subID}", h.listBySub)
	r.Get("/profile/{profileID}", h.listByProfile)
	r.Put("/profile/{profileID}", h.replaceForProfile)
	return r
}

// statusFor maps the executor's failure taxonomy to HTTP status codes. The
// mapping lives here, at the HTTP edge; the taxonomy itself is transport
// agnostic.
func statusFor(kind tenantdb.ErrorKind) int {
	switch kind {
	case tenantdb.KindUnauthorized:
		return http.StatusUnauthorized
	case tenantdb.KindForbidden:
		return http.StatusForbidden
	case tenantdb.KindConflict:
		return http.StatusConflict
	case tenantdb.KindInvalidReference, tenantdb.KindMissingField:
		return http.StatusBadRequest
	case tenantdb.KindUnavailable:
		return http.StatusServiceUnavailable
	case tenantdb.KindTimeout:
		return http.StatusGatewayTimeout
	case tenantdb.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the outcome as the standard envelope.
func respond[T any](w http.ResponseWriter, outcome tenantdb.Outcome[T], message string) {
	if !outcome.OK {
		response.Fail(w, statusFor(outcome.Kind), outcome.Message)
		return
	}
	response.OK(w, outcome.Data, message)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	identity, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in UpsertInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.CreatedBy = userID

	outcome := h.service.Upsert(r.Context(), identity.OrgID, in)
	if outcome.OK {
		response.Created(w, outcome.Data, "Column saved.")
		return
	}
	response.Fail(w, statusFor(outcome.Kind), outcome.Message)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid column id.")
		return
	}

	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.ID = id
	in.UpdatedBy = userID

	respond(w, h.service.Update(r.Context(), identity.OrgID, in), "Column updated.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid column id.")
		return
	}

	respond(w, h.service.Delete(r.Context(), identity.OrgID, id, userID), "Column deleted.")
}

func (h *Handler) listBySub(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	subID, err := uuid.Parse(chi.URLParam(r, "subID"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid subscription id.")
		return
	}

	respond(w, h.service.ListBySubID(r.Context(), identity.OrgID, subID), "")
}

func (h *Handler) listByProfile(w http.ResponseWriter, r *http.Request) {
	identity, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid profile id.")
		return
	}

	respond(w, h.service.ListByProfileID(r.Context(), identity.OrgID, profileID), "")
}

func (h *Handler) replaceForProfile(w http.ResponseWriter, r *http.Request) {
	identity, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid profile id.")
		return
	}

	var in struct {
		Columns []UpsertInput `json:"columns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	for i := range in.Columns {
		in.Columns[i].CreatedBy = userID
	}

	respond(w, h.service.ReplaceForProfile(r.Context(), identity.OrgID, profileID, userID, in.Columns), "Columns replaced.")
}

// requireIdentity pulls the tenant identity from the context and parses the
// acting user's id. Failure means the middleware chain was bypassed.
func requireIdentity(w http.ResponseWriter, r *http.Request) (tenant.Identity, uuid.UUID, bool) {
	identity, ok := tenant.FromContext(r.Context())
	if !ok {
		response.Fail(w, http.StatusUnauthorized, "Authentication required.")
		return tenant.Identity{}, uuid.Nil, false
	}
	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		response.Fail(w, http.StatusUnauthorized, "Invalid authentication token.")
		return tenant.Identity{}, uuid.Nil, false
	}
	return identity, userID, true
}
