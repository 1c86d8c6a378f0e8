package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/algonote-ai/sheet-engine/pkg/apperrors"
	"github.com/algonote-ai/sheet-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ImportPlaylistRequest for POST /api/playlists/import
type ImportPlaylistRequest struct {
	PlaylistURL string `json:"playlistUrl"`
}

// SheetListResponse for GET /api/sheets
type SheetListResponse struct {
	Sheets any `json:"sheets"`
	Total  int `json:"total"`
}

// DeleteSheetResponse for DELETE /api/sheets/{id}
type DeleteSheetResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Handler
// ============================================================================

// SheetHandler handles playlist import and sheet HTTP requests.
type SheetHandler struct {
	importService      services.ImportService
	sheetService       services.SheetService
	materializeService services.MaterializeService
	logger             *zap.Logger
}

// NewSheetHandler creates a new sheet handler.
func NewSheetHandler(
	importService services.ImportService,
	sheetService services.SheetService,
	materializeService services.MaterializeService,
	logger *zap.Logger,
) *SheetHandler {
	return &SheetHandler{
		importService:      importService,
		sheetService:       sheetService,
		materializeService: materializeService,
		logger:             logger,
	}
}

// RegisterRoutes registers the sheet handler's routes on the given mux.
func (h *SheetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/playlists/import", h.Import)
	mux.HandleFunc("GET /api/sheets", h.List)
	mux.HandleFunc("GET /api/sheets/{id}", h.Get)
	mux.HandleFunc("DELETE /api/sheets/{id}", h.Delete)
	mux.HandleFunc("POST /api/sheets/{id}/materialize", h.Materialize)
}

// Import handles POST /api/playlists/import
func (h *SheetHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.PlaylistURL) == "" {
		h.writeError(w, http.StatusBadRequest, "missing_playlist_url", "playlistUrl is required")
		return
	}

	result, err := h.importService.ImportPlaylist(r.Context(), req.PlaylistURL)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidPlaylistURL):
			h.writeError(w, http.StatusBadRequest, "invalid_playlist_url", err.Error())
		case errors.Is(err, apperrors.ErrNoVideosFound):
			h.writeError(w, http.StatusNotFound, "no_videos_found", "No videos found in this playlist")
		default:
			h.logger.Error("Playlist import failed",
				zap.String("playlist_url", req.PlaylistURL),
				zap.Error(err))
			h.writeError(w, http.StatusBadGateway, "import_failed", err.Error())
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/sheets
func (h *SheetHandler) List(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.sheetService.ListSheets(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sheets", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_sheets_failed", err.Error())
		return
	}

	response := SheetListResponse{
		Sheets: sheets,
		Total:  len(sheets),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/sheets/{id}
func (h *SheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := ParseSheetID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.sheetService.GetSheet(r.Context(), sheetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "sheet_not_found", "Sheet not found")
			return
		}
		h.logger.Error("Failed to get sheet",
			zap.String("sheet_id", sheetID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_sheet_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/sheets/{id}
func (h *SheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := ParseSheetID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.sheetService.DeleteSheet(r.Context(), sheetID); err != nil {
		h.logger.Error("Failed to delete sheet",
			zap.String("sheet_id", sheetID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "delete_sheet_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, DeleteSheetResponse{Message: "Sheet deleted successfully"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Materialize handles POST /api/sheets/{id}/materialize
func (h *SheetHandler) Materialize(w http.ResponseWriter, r *http.Request) {
	sheetID, ok := ParseSheetID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.materializeService.Materialize(r.Context(), sheetID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "sheet_not_found", "Sheet not found")
		case errors.Is(err, apperrors.ErrEmptySheet):
			h.writeError(w, http.StatusBadRequest, "empty_sheet", "Sheet has no problems to create files for")
		default:
			h.logger.Error("Materialization failed",
				zap.String("sheet_id", sheetID.String()),
				zap.Error(err))
			h.writeError(w, http.StatusBadGateway, "materialize_failed", err.Error())
		}
		return
	}

	status := http.StatusCreated
	if result.AlreadyMaterialized {
		status = http.StatusOK
	}
	if err := WriteJSON(w, status, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SheetHandler) writeError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
