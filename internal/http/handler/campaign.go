package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"engage-api/internal/domain"
	"engage-api/internal/http/httperr"
	"engage-api/internal/observability/logger"
	"engage-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxUploadBytes limita o corpo de POST /campaigns e do preview.
const DefaultMaxUploadBytes int64 = 10 << 20

type CampaignHandler struct {
	service        *service.CampaignService
	maxUploadBytes int64
}

func NewCampaignHandler(service *service.CampaignService, maxUploadBytes int64) *CampaignHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &CampaignHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// ListCampaigns handles GET /v1/companies/{companyId}/campaigns
func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	filter := domain.CampaignFilter{Search: r.URL.Query().Get("q")}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.CampaignStatus(status)
		if !filter.Status.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "status must be one of: draft, active, paused, completed")
			return
		}
	}

	response, err := h.service.ListCampaigns(ctx, companyID, actorID, filter)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateCampaign handles POST /v1/companies/{companyId}/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req domain.CreateCampaignRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	campaign, err := h.service.CreateCampaign(ctx, companyID, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}

	log.Info(ctx, "campaign created",
		logger.Module("campaign"),
		logger.Action("create"),
		zap.String("campaign_id", campaign.ID),
		zap.Int("leads", len(campaign.Leads)),
	)

	w.Header().Set("Location", "/v1/companies/"+companyID+"/campaigns/"+campaign.ID)
	writeJSON(w, http.StatusCreated, campaign)
}

// GetCampaign handles GET /v1/companies/{companyId}/campaigns/{campaignId}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	campaign, err := h.service.GetCampaign(ctx, companyID, chi.URLParam(r, "campaignId"), actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// StartCampaign handles POST /v1/companies/{companyId}/campaigns/{campaignId}/:start
func (h *CampaignHandler) StartCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.StartCampaign)
}

// PauseCampaign handles POST /v1/companies/{companyId}/campaigns/{campaignId}/:pause
func (h *CampaignHandler) PauseCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.PauseCampaign)
}

// CompleteCampaign handles POST /v1/companies/{companyId}/campaigns/{campaignId}/:complete
func (h *CampaignHandler) CompleteCampaign(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CompleteCampaign)
}

func (h *CampaignHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	do func(ctx context.Context, companyID, campaignID, actorID string) (*domain.Campaign, error),
) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	campaign, err := do(ctx, companyID, chi.URLParam(r, "campaignId"), actorID)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// ListLeads handles GET /v1/companies/{companyId}/campaigns/{campaignId}/leads
func (h *CampaignHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	filter := domain.LeadFilter{Search: r.URL.Query().Get("q")}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.LeadStatus(status)
		if !filter.Status.IsValid() {
			httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidStatus, "invalid lead status")
			return
		}
	}

	response, err := h.service.ListLeads(ctx, companyID, chi.URLParam(r, "campaignId"), actorID, filter)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// UpdateLead handles PATCH /v1/companies/{companyId}/campaigns/{campaignId}/leads/{leadId}
func (h *CampaignHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	var req domain.UpdateLeadStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.service.UpdateLeadStatus(ctx, companyID, chi.URLParam(r, "campaignId"), chi.URLParam(r, "leadId"), actorID, req.Status)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// PreviewImport handles POST /v1/companies/{companyId}/campaigns/imports:preview.
// Aceita multipart (campo "file", "mode" opcional) ou JSON {csv, mode}.
func (h *CampaignHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, actorID, ok := requestScope(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req domain.PreviewImportRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		text, err := readUpload(r, h.maxUploadBytes)
		if err != nil {
			writeUploadError(w, r, err)
			return
		}
		if strings.TrimSpace(text) == "" {
			httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeInvalidCSV, "uploaded file is empty", map[string]string{"file": "is empty"})
			return
		}
		req = domain.PreviewImportRequest{CSV: text, Mode: r.FormValue("mode")}
		if err := req.Validate(); err != nil {
			httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "request validation failed", domain.ValidationFields(err))
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	preview, err := h.service.PreviewImport(ctx, companyID, actorID, req.CSV, req.Mode)
	if err != nil {
		handleServiceError(w, ctx, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func readUpload(r *http.Request, maxBytes int64) (string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return "", err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httperr.WriteError(w, ctx, http.StatusRequestEntityTooLarge, httperr.ErrCodePayloadTooLarge, "csv upload exceeds the size limit")
	case errors.Is(err, http.ErrMissingFile):
		httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeMissingParameter, "multipart field is missing", map[string]string{"file": "is required"})
	default:
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidFormat, "invalid multipart body")
	}
}
