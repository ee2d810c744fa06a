package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/engine"
	"github.com/iwvelando/valuecalc/internal/store"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"go.uber.org/zap"
)

// Options wires the handler to its collaborators. Client is required for
// the calculation endpoints; a nil Store makes the solution and catalog
// endpoints answer 503; a non-nil Engine is served at /api/v1/calculate.
type Options struct {
	MaxUploadSize int64
	Version       string
	Client        *calcclient.Client
	Store         *store.Store
	Engine        *engine.Engine
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	client        *calcclient.Client
	store         *store.Store
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	client := opts.Client
	if client == nil {
		client = calcclient.New(logger, calcclient.Options{})
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		client:        client,
		store:         opts.Store,
	}

	mux := http.NewServeMux()

	// Calculation endpoints
	mux.HandleFunc("POST /api/assemble", h.handleAssemble)
	mux.HandleFunc("POST /api/calculate", h.handleCalculate)
	mux.HandleFunc("POST /api/preview", h.handlePreview)
	mux.HandleFunc("POST /api/compare", h.handleCompare)

	// Workbook upload, the file-based counterpart of /api/calculate and /api/compare
	mux.HandleFunc("POST /api/workbook", h.handleWorkbook)

	// Solution store
	mux.HandleFunc("GET /api/solutions", h.handleListSolutions)
	mux.HandleFunc("POST /api/solutions", h.handleSaveSolution)
	mux.HandleFunc("GET /api/solutions/{id}", h.handleGetSolution)
	mux.HandleFunc("DELETE /api/solutions/{id}", h.handleDeleteSolution)
	mux.HandleFunc("POST /api/solutions/{id}/submit", h.handleSubmitSolution)
	mux.HandleFunc("GET /api/catalog/{kind}", h.handleGetCatalog)
	mux.HandleFunc("POST /api/catalog/{kind}", h.handlePutCatalog)

	// Solution builder
	mux.HandleFunc("POST /api/wizard", h.handleWizard)

	// Solution serialization endpoint for downloads
	mux.HandleFunc("POST /api/export", h.handleExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("GET /api/version", h.handleVersion)

	if opts.Engine != nil {
		mux.Handle(constants.CalculatePath, opts.Engine.Handler())
	}

	return mux
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decodeJSON reads a size-limited JSON body into dst and answers the request
// itself when that fails.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Warn("request rejected", fields...)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
