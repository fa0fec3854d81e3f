package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/port"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/application/service"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/domain/entity"
	"github.com/MarcosDelSer/laya-backbone-sub008/internal/report"
)

// maxUploadBytes bounds validation uploads; real transmission files stay
// well under this
const maxUploadBytes = 16 << 20

// Handlers contains all HTTP request handlers
type Handlers struct {
	batchService        service.BatchService
	transmissionService service.TransmissionService
	eligibilityService  service.EligibilityService
	validationService   service.ValidationService
	paperSummary        *report.PaperSummary
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	batchService service.BatchService,
	transmissionService service.TransmissionService,
	eligibilityService service.EligibilityService,
	validationService service.ValidationService,
	paperSummary *report.PaperSummary,
	logger Logger,
) *Handlers {
	return &Handlers{
		batchService:        batchService,
		transmissionService: transmissionService,
		eligibilityService:  eligibilityService,
		validationService:   validationService,
		paperSummary:        paperSummary,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// BatchRequest carries the tax year for batch operations
type BatchRequest struct {
	TaxYear int `json:"tax_year" binding:"required"`
}

// AmendmentRequest carries corrections against previously filed slips
type AmendmentRequest struct {
	TaxYear int                     `json:"tax_year" binding:"required"`
	Items   []service.AmendmentItem `json:"items" binding:"required"`
}

// StatusUpdateRequest carries an eligibility status change
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListTransmissionsRequest represents query parameters for listing transmissions
type ListTransmissionsRequest struct {
	TaxYear int `form:"tax_year"`
	Limit   int `form:"limit"`
	Offset  int `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// PreviewBatch handles POST /api/batches/preview
func (h *Handlers) PreviewBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "tax_year is required")
		return
	}

	result, err := h.batchService.PreviewBatch(c.Request.Context(), req.TaxYear)
	if err != nil {
		h.logger.Error("Batch preview failed", "tax_year", req.TaxYear, "error", err)
		h.internalError(c, "batch preview failed")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ProcessBatch handles POST /api/batches
func (h *Handlers) ProcessBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "tax_year is required")
		return
	}

	result, err := h.batchService.ProcessBatch(c.Request.Context(), req.TaxYear)
	if err != nil {
		h.logger.Error("Batch processing failed", "tax_year", req.TaxYear, "error", err)
		h.internalError(c, "batch processing failed: "+err.Error())
		return
	}

	status := http.StatusCreated
	if !result.Generated() || result.Preview {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: result.Generated(), Data: result})
}

// ProcessAmendment handles POST /api/batches/amendments
func (h *Handlers) ProcessAmendment(c *gin.Context) {
	var req AmendmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "tax_year and items are required")
		return
	}

	result, err := h.batchService.ProcessAmendment(c.Request.Context(), req.TaxYear, req.Items)
	if err != nil {
		h.logger.Error("Amendment processing failed", "tax_year", req.TaxYear, "error", err)
		h.internalError(c, "amendment processing failed: "+err.Error())
		return
	}

	status := http.StatusCreated
	if !result.Generated() || result.Preview {
		status = http.StatusOK
	}
	c.JSON(status, Response{Success: result.Generated(), Data: result})
}

// ListTransmissions handles GET /api/transmissions
func (h *Handlers) ListTransmissions(c *gin.Context) {
	var req ListTransmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "invalid query parameters")
		return
	}

	if req.TaxYear != 0 {
		transmissions, err := h.transmissionService.ListByTaxYear(c.Request.Context(), req.TaxYear)
		if err != nil {
			h.logger.Error("Failed to list transmissions", "tax_year", req.TaxYear, "error", err)
			h.internalError(c, "failed to retrieve transmissions")
			return
		}
		c.JSON(http.StatusOK, Response{Success: true, Data: transmissions})
		return
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	transmissions, err := h.transmissionService.ListTransmissions(c.Request.Context(), req.Limit, req.Offset)
	if err != nil {
		h.logger.Error("Failed to list transmissions", "error", err)
		h.internalError(c, "failed to retrieve transmissions")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: transmissions})
}

// GetTransmission handles GET /api/transmissions/:id
func (h *Handlers) GetTransmission(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	tr, err := h.transmissionService.GetTransmission(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrError(c, err, "transmission not found")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: tr})
}

// DownloadTransmissionFile handles GET /api/transmissions/:id/file
func (h *Handlers) DownloadTransmissionFile(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	filename, content, err := h.transmissionService.ReadArtifact(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrError(c, err, "transmission file not found")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/xml", content)
}

// DownloadPaperSummary handles GET /api/transmissions/:id/summary
func (h *Handlers) DownloadPaperSummary(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	tr, err := h.transmissionService.GetTransmission(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrError(c, err, "transmission not found")
		return
	}

	content, err := h.paperSummary.Render(tr)
	if err != nil {
		h.logger.Error("Paper summary rendering failed", "id", id, "error", err)
		h.internalError(c, "failed to render paper summary")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sommaire-`+tr.Filename+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// MarkValidated handles POST /api/transmissions/:id/validate
func (h *Handlers) MarkValidated(c *gin.Context) {
	h.lifecycle(c, h.transmissionService.MarkValidated)
}

// MarkSubmitted handles POST /api/transmissions/:id/submit
func (h *Handlers) MarkSubmitted(c *gin.Context) {
	h.lifecycle(c, h.transmissionService.MarkSubmitted)
}

// MarkAccepted handles POST /api/transmissions/:id/accept
func (h *Handlers) MarkAccepted(c *gin.Context) {
	h.lifecycle(c, h.transmissionService.MarkAccepted)
}

// MarkRejected handles POST /api/transmissions/:id/reject
func (h *Handlers) MarkRejected(c *gin.Context) {
	h.lifecycle(c, h.transmissionService.MarkRejected)
}

// CancelTransmission handles POST /api/transmissions/:id/cancel
func (h *Handlers) CancelTransmission(c *gin.Context) {
	h.lifecycle(c, h.transmissionService.Cancel)
}

// ValidateFile handles POST /api/validate with a multipart "file" part
func (h *Handlers) ValidateFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c, "a file upload named 'file' is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		h.badRequest(c, "uploaded file is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.internalError(c, "failed to open uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.internalError(c, "failed to read uploaded file")
		return
	}

	reportData := h.validationService.ValidateUpload(c.Request.Context(), fileHeader.Filename, content)
	c.JSON(http.StatusOK, Response{Success: true, Data: reportData})
}

// CreateEligibilityRecord handles POST /api/eligibility
func (h *Handlers) CreateEligibilityRecord(c *gin.Context) {
	var rec entity.EligibilityRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		h.badRequest(c, "invalid eligibility record: "+err.Error())
		return
	}

	if err := h.eligibilityService.CreateRecord(c.Request.Context(), &rec); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: rec})
}

// ListEligibilityRecords handles GET /api/eligibility
func (h *Handlers) ListEligibilityRecords(c *gin.Context) {
	taxYear, err := strconv.Atoi(c.Query("tax_year"))
	if err != nil {
		h.badRequest(c, "tax_year query parameter is required")
		return
	}

	var records []*entity.EligibilityRecord
	if c.Query("unslipped") == "true" {
		records, err = h.eligibilityService.ListUnslipped(c.Request.Context(), taxYear)
	} else {
		records, err = h.eligibilityService.ListRecords(c.Request.Context(), taxYear)
	}
	if err != nil {
		h.logger.Error("Failed to list eligibility records", "tax_year", taxYear, "error", err)
		h.internalError(c, "failed to retrieve eligibility records")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// GetEligibilityRecord handles GET /api/eligibility/:id
func (h *Handlers) GetEligibilityRecord(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	rec, err := h.eligibilityService.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.notFoundOrError(c, err, "eligibility record not found")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rec})
}

// UpdateEligibilityStatus handles PATCH /api/eligibility/:id/status
func (h *Handlers) UpdateEligibilityStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "status is required")
		return
	}

	rec, err := h.eligibilityService.UpdateStatus(c.Request.Context(), id, entity.EligibilityStatus(req.Status))
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			h.notFound(c, "eligibility record not found")
			return
		}
		h.badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: rec})
}

// DeleteEligibilityRecord handles DELETE /api/eligibility/:id
func (h *Handlers) DeleteEligibilityRecord(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.eligibilityService.DeleteRecord(c.Request.Context(), id); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			h.notFound(c, "eligibility record not found")
			return
		}
		h.badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// lifecycle runs one transmission lifecycle operation identified by the path id
func (h *Handlers) lifecycle(c *gin.Context, op func(ctx context.Context, id int64) (*entity.Transmission, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	tr, err := op(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			h.notFound(c, "transmission not found")
			return
		}
		h.badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: tr})
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

func (h *Handlers) notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Success: false, Error: msg})
}

func (h *Handlers) internalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}

func (h *Handlers) notFoundOrError(c *gin.Context, err error, msg string) {
	if errors.Is(err, port.ErrNotFound) {
		h.notFound(c, msg)
		return
	}
	h.logger.Error("Request failed", "error", err)
	h.internalError(c, "internal error")
}
