// Package chi exposes the docflow services over HTTP with a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docflow/internal/domain"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	logpkg "github.com/kailas-cloud/docflow/internal/logger"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// Default page for GET /journey/api/v1/all-paginated.
const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Error codes carried in errorResponse.
const (
	codeBadRequest      = "bad_request"
	codeValidation      = "validation_failed"
	codeInvalidDocument = "invalid_document"
	codeUnauthorized    = "unauthorized"
	codeNotFound        = "not_found"
	codeUnavailable     = "store_unavailable"
	codeInternal        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the analytic, ingestor and journey APIs.
type Server struct {
	flow          FlowService
	ingest        IngestService
	journey       JourneyService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	flow FlowService,
	ingest IngestService,
	journey JourneyService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		flow:    flow,
		ingest:  ingest,
		journey: journey,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		invalidDocumentHandler,
		invalidInputHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeUnavailable),
	}
	return s
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)

	r.Route("/analytic/api/v1", func(r chi.Router) {
		r.Get("/claims/flow", s.ClaimFlow)
	})

	r.Route("/ingestor/api/v1/index/{index}", func(r chi.Router) {
		r.Post("/store-doc", s.StoreDoc)
		r.Post("/store-docs", s.StoreDocs)
	})

	r.Route("/journey/api/v1", func(r chi.Router) {
		r.Get("/get_by_id", s.GetJourney)
		r.Post("/save", s.SaveJourney)
		r.Patch("/update/{id}", s.UpdateJourney)
		r.Post("/bulk-save", s.BulkSaveJourneys)
		r.Get("/all", s.AllJourneys)
		r.Post("/search", s.SearchJourneys)
		r.Get("/all-paginated", s.AllJourneysPaginated)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// ClaimFlowParams are the query parameters of GET /analytic/api/v1/claims/flow.
// Zero and absent ids are equivalent.
type ClaimFlowParams struct {
	EclaimID   *int64
	DocumentID *int64
	ClaimID    *int64
}

// ClaimFlow handles GET /analytic/api/v1/claims/flow. A damage request id takes precedence over
// a document id, which takes precedence over a claim id.
func (s *Server) ClaimFlow(w http.ResponseWriter, r *http.Request) {
	var params ClaimFlowParams
	q := r.URL.Query()
	for name, dest := range map[string]**int64{
		"eclaim_id":   &params.EclaimID,
		"document_id": &params.DocumentID,
		"claim_id":    &params.ClaimID,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
			return
		}
	}

	var (
		events []domflow.Event
		err    error
	)
	switch {
	case positive(params.EclaimID):
		events, err = s.flow.ByDamageRequestID(r.Context(), *params.EclaimID)
	case positive(params.DocumentID):
		events, err = s.flow.ByDocumentID(r.Context(), *params.DocumentID)
	case positive(params.ClaimID):
		events, err = s.flow.ByClaimID(r.Context(), *params.ClaimID)
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest,
			"You must provide either eclaim_id or document_id or claim_id in query params")
		return
	}
	if err != nil {
		s.handleError(w, r, err, "Error retrieving claim flow")
		return
	}

	if events == nil {
		events = []domflow.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// StoreDoc handles POST /ingestor/api/v1/index/{index}/store-doc.
func (s *Server) StoreDoc(w http.ResponseWriter, r *http.Request) {
	index, ok := s.indexParam(w, r)
	if !ok {
		return
	}

	var doc map[string]any
	if !decodeBody(w, r, &doc) {
		return
	}
	if doc == nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Request body must be a JSON object")
		return
	}

	res, err := s.ingest.InsertOne(r.Context(), index, doc)
	if err != nil {
		s.handleError(w, r, err, "An internal error occurred while creating the log entry")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// StoreDocs handles POST /ingestor/api/v1/index/{index}/store-docs. The status reflects the
// outcome: 201 when every document was written, 207 when some were, 417 when none were.
func (s *Server) StoreDocs(w http.ResponseWriter, r *http.Request) {
	index, ok := s.indexParam(w, r)
	if !ok {
		return
	}

	var docs []map[string]any
	if !decodeBody(w, r, &docs) {
		return
	}

	out, err := s.ingest.BulkInsert(r.Context(), index, docs, 0)
	if err != nil {
		s.handleError(w, r, err, "An internal error occurred while bulk creating log entries")
		return
	}
	writeJSON(w, bulkStatus(out), out)
}

func bulkStatus(out bulk.Outcome) int {
	switch out.Kind() {
	case bulk.Partial:
		return http.StatusMultiStatus
	case bulk.AllFailed:
		return http.StatusExpectationFailed
	default:
		return http.StatusCreated
	}
}

// GetJourney handles GET /journey/api/v1/get_by_id. A missing journey renders as null.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindQueryParameter("form", true, true, "id", r.URL.Query(), &id); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter id: "+err.Error())
		return
	}

	doc, err := s.journey.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err, "An internal error occurred while creating entries")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SaveJourney handles POST /journey/api/v1/save.
func (s *Server) SaveJourney(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if !decodeBody(w, r, &doc) {
		return
	}
	if doc == nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Request body must be a JSON object")
		return
	}

	out, err := s.journey.Save(r.Context(), doc)
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type updateJourneyRequest struct {
	Data map[string]any `json:"data"`
	Meta map[string]any `json:"meta"`
}

// UpdateJourney handles PATCH /journey/api/v1/update/{id}.
func (s *Server) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := bindPath(r, "id", &id); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter id: "+err.Error())
		return
	}

	var req updateJourneyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := patch.New(req.Data, req.Meta)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
		return
	}

	out, err := s.journey.Update(r.Context(), id, p)
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// BulkSaveJourneys handles POST /journey/api/v1/bulk-save.
func (s *Server) BulkSaveJourneys(w http.ResponseWriter, r *http.Request) {
	var docs []map[string]any
	if !decodeBody(w, r, &docs) {
		return
	}

	out, err := s.journey.BulkSave(r.Context(), docs)
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// AllJourneys handles GET /journey/api/v1/all.
func (s *Server) AllJourneys(w http.ResponseWriter, r *http.Request) {
	res, err := s.journey.All(r.Context())
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchJourneys handles POST /journey/api/v1/search.
func (s *Server) SearchJourneys(w http.ResponseWriter, r *http.Request) {
	var q journeyuc.Query
	if !decodeBody(w, r, &q) {
		return
	}

	res, err := s.journey.Search(r.Context(), q, 0)
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AllJourneysPaginated handles GET /journey/api/v1/all-paginated.
func (s *Server) AllJourneysPaginated(w http.ResponseWriter, r *http.Request) {
	page, size := defaultPage, defaultPageSize
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter page: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", q, &size); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter size: "+err.Error())
		return
	}

	res, err := s.journey.AllPaginated(r.Context(), page, size)
	if err != nil {
		s.handleError(w, r, err, "Unexpected internal server error")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) indexParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	var index string
	if err := bindPath(r, "index", &index); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid format for parameter index: "+err.Error())
		return "", false
	}
	return index, true
}

func bindPath(r *http.Request, name string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
}

// decodeBody reads a JSON body keeping numbers as json.Number. On failure it writes a 400
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func positive(p *int64) bool { return p != nil && *p > 0 }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// invalidDocumentHandler reports documents the store refused along with its reason.
func invalidDocumentHandler(w http.ResponseWriter, err error) bool {
	var ide *domain.InvalidDocumentError
	if !errors.As(err, &ide) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeInvalidDocument,
		"Invalid document format or field type: "+ide.Reason)
	return true
}

// invalidInputHandler reports malformed requests with the full error message.
func invalidInputHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// handleError maps err onto a response. Unclassified errors become a 500 carrying fallback;
// the cause is only logged.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("request rejected", zap.Error(err))
			return
		}
	}
	log.Error(fallback, zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, fallback)
}
