package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"coverly-core-importer-layer/internal/application"
	"coverly-core-importer-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ImportRunner runs one credentialed import attempt
type ImportRunner interface {
	RunCredentialedImport(ctx context.Context, userID string, creds *domain.ImportCredentials) (*application.ImportResult, error)
}

// ImportHandler exposes the credentialed scrape endpoint
type ImportHandler struct {
	importer ImportRunner
	logger   zerolog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer ImportRunner, logger zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		importer: importer,
		logger:   logger,
	}
}

type importRequest struct {
	Retailer string `json:"retailer"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type importResponse struct {
	Success       bool                        `json:"success"`
	Message       string                      `json:"message,omitempty"`
	ImportedCount int                         `json:"imported_count"`
	Products      []domain.ImportedProductRef `json:"products"`
}

type errorResponse struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error"`
	SupportedRetailers []string `json:"supported_retailers,omitempty"`
}

// HandleCredentialedScrape runs a synchronous import for the authenticated
// user. The request body never reaches the logs.
func (h *ImportHandler) HandleCredentialedScrape(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := domain.GetUserIDFromContext(ctx)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Retailer) == "" ||
		strings.TrimSpace(req.Username) == "" ||
		req.Password == "" {
		writeError(w, http.StatusBadRequest, "retailer, username and password are required", nil)
		return
	}

	creds := &domain.ImportCredentials{
		Retailer: req.Retailer,
		Username: req.Username,
		Password: req.Password,
	}
	req.Password = ""
	req.Username = ""

	result, err := h.importer.RunCredentialedImport(ctx, userID, creds)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("retailer", domain.NormalizeRetailer(creds.Retailer)).
			Msg("Credentialed import failed")
		status, message, retailers := classifyImportError(err)
		writeError(w, status, message, retailers)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{
		Success:       true,
		Message:       "import completed",
		ImportedCount: result.ImportedCount,
		Products:      result.Products,
	})
}

// classifyImportError maps the import error taxonomy onto HTTP statuses.
func classifyImportError(err error) (int, string, []string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedRetailer):
		return http.StatusBadRequest, "unsupported retailer", domain.KnownRetailers()
	case errors.Is(err, domain.ErrRetailerNotImplemented):
		return http.StatusNotImplemented, "retailer import not yet implemented", nil
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", nil
	case errors.Is(err, domain.ErrLoginFailed):
		return http.StatusUnauthorized, "login failed", nil
	case errors.Is(err, domain.ErrChallengeRequired):
		return http.StatusUnprocessableEntity, "retailer requires additional verification", nil
	case errors.Is(err, domain.ErrImportInProgress):
		return http.StatusConflict, "an import for this retailer is already running", nil
	default:
		return http.StatusInternalServerError, "import failed", nil
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, retailers []string) {
	writeJSON(w, status, errorResponse{
		Success:            false,
		Error:              message,
		SupportedRetailers: retailers,
	})
}
