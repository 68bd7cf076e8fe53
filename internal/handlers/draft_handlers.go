package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DraftStore keeps in-progress quote drafts keyed by ID. Every draft is
// isolated; there is deliberately no process-wide "current" draft.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]map[string]json.RawMessage
}

// NewDraftStore creates an empty DraftStore
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[uuid.UUID]map[string]json.RawMessage),
	}
}

// Create registers a new empty draft and returns its ID.
func (s *DraftStore) Create() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.drafts[id] = make(map[string]json.RawMessage)
	s.mu.Unlock()
	return id
}

// Get returns a copy of the draft's merged fields.
func (s *DraftStore) Get(id uuid.UUID) (map[string]json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]json.RawMessage, len(draft))
	for field, value := range draft {
		out[field] = value
	}
	return out, true
}

// Merge upserts the given fields into the draft.
func (s *DraftStore) Merge(id uuid.UUID, fields map[string]json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[id]
	if !ok {
		return false
	}
	for field, value := range fields {
		draft[field] = value
	}
	return true
}

// DraftHandler serves the draft workflow: create, inspect, merge partial
// inputs, and run the calculation once the draft is complete.
type DraftHandler struct {
	common *CommonServices
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(common *CommonServices) *DraftHandler {
	return &DraftHandler{common: common}
}

// DraftResponse reports a draft's ID and merged fields.
type DraftResponse struct {
	DraftID string                     `json:"draft_id"`
	Fields  map[string]json.RawMessage `json:"fields"`
}

// CreateDraft handles POST /drafts
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	id := h.common.drafts.Create()
	sendSuccess(c, http.StatusCreated, DraftResponse{
		DraftID: id.String(),
		Fields:  map[string]json.RawMessage{},
	})
}

// GetDraft handles GET /drafts/:draft_id
func (h *DraftHandler) GetDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("draft_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid draft ID format", err)
		return
	}
	fields, ok := h.common.drafts.Get(id)
	if !ok {
		sendError(c, http.StatusNotFound, "Draft not found", errors.Errorf("draft %s not found", id))
		return
	}
	sendSuccess(c, http.StatusOK, DraftResponse{DraftID: id.String(), Fields: fields})
}

// UpdateDraft handles PATCH /drafts/:draft_id by merging the request body
// into the draft.
func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("draft_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid draft ID format", err)
		return
	}
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body: "+err.Error(), err)
		return
	}
	if !h.common.drafts.Merge(id, fields) {
		sendError(c, http.StatusNotFound, "Draft not found", errors.Errorf("draft %s not found", id))
		return
	}
	merged, _ := h.common.drafts.Get(id)
	sendSuccess(c, http.StatusOK, DraftResponse{DraftID: id.String(), Fields: merged})
}

// CalculateDraft handles POST /drafts/:draft_id/calculate. The merged
// fields must form a complete DepreciationRequest.
func (h *DraftHandler) CalculateDraft(c *gin.Context) {
	id, err := uuid.Parse(c.Param("draft_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid draft ID format", err)
		return
	}
	fields, ok := h.common.drafts.Get(id)
	if !ok {
		sendError(c, http.StatusNotFound, "Draft not found", errors.Errorf("draft %s not found", id))
		return
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	var req DepreciationRequest
	if err := json.Unmarshal(merged, &req); err != nil {
		sendError(c, http.StatusBadRequest, "Draft fields are malformed: "+err.Error(), err)
		return
	}
	if req.PurchasePrice <= 0 || req.AcquisitionDate == "" || req.FilingDate == "" || req.PropertyType == "" {
		sendError(c, http.StatusBadRequest,
			"Draft is incomplete: purchase_price, acquisition_date, filing_date and property_type are required",
			errors.New("incomplete draft"))
		return
	}

	report, err := buildReport(&req)
	if err != nil {
		handleCalcError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, report)
}
