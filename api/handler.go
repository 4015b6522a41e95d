package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/receiptscan/receipt-ocr-service/internal/models"
	"github.com/receiptscan/receipt-ocr-service/internal/ocr"
	"github.com/receiptscan/receipt-ocr-service/internal/pipeline"
	"github.com/receiptscan/receipt-ocr-service/internal/validate"
)

const ServiceName = "Receipt OCR API"

// Processor is the pipeline contract the HTTP layer depends on.
type Processor interface {
	Process(ctx context.Context, image []byte, contentType string) (*models.Receipt, error)
}

// Handler handles HTTP requests for receipt processing
type Handler struct {
	config    *models.Config
	processor Processor
	validator *validate.Validator
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, processor Processor) *Handler {
	return &Handler{
		config:    config,
		processor: processor,
		validator: validate.New(),
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/process-receipt", h.ProcessReceipt).Methods("POST")
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// Health always reports healthy while the process is up. It deliberately does
// not probe the upstream providers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// ProcessReceipt accepts a multipart image upload and returns the structured
// receipt record.
func (h *Handler) ProcessReceipt(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	start := time.Now()
	log := slog.With("request_id", uuid.New().String()[:8])

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.sendError(w, http.StatusRequestEntityTooLarge, "File exceeds the maximum upload size", "invalid_input")
			return
		}
		h.sendError(w, http.StatusBadRequest, "Invalid multipart form data", "invalid_input")
		return
	}

	// Accept both "file" and "image" field names.
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' or 'image' field)", "invalid_input")
			return
		}
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != "" && !h.config.AllowsExtension(ext) {
		h.sendError(w, http.StatusBadRequest, "File extension is not allowed", "invalid_input")
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.sendError(w, http.StatusRequestEntityTooLarge, "File exceeds the maximum upload size", "invalid_input")
			return
		}
		h.sendError(w, http.StatusBadRequest, "Failed to read uploaded file", "invalid_input")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		// No declared type; fall back to sniffing the bytes.
		if format, ok := ocr.DetectFormat(imageData); ok {
			contentType = ocr.MIMEType(format)
		}
	}

	log.Info("processing receipt", "filename", header.Filename, "bytes", len(imageData), "content_type", contentType)

	receipt, err := h.processor.Process(r.Context(), imageData, contentType)
	if err != nil {
		var pipelineErr *pipeline.Error
		if errors.As(err, &pipelineErr) {
			log.Error("receipt processing failed", "kind", string(pipelineErr.Kind), "error", err)
			h.sendError(w, pipelineErr.HTTPStatus(), pipelineErr.PublicDetail(), string(pipelineErr.Kind))
			return
		}
		log.Error("receipt processing failed", "kind", "internal", "error", err)
		h.sendError(w, http.StatusInternalServerError, "Internal server error while processing receipt", "internal")
		return
	}

	report := h.validator.Validate(receipt)
	log.Info("receipt processed", "duration", time.Since(start), "items", len(receipt.Items), "consistent", report.Consistent)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.NewSuccessEnvelope(receipt, report))
}

// sendError writes the error envelope with the given status.
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, detail, errorCode string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.NewErrorEnvelope(statusCode, detail, errorCode))
}
