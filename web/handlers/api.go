package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/catalog"
	"github.com/petralab/lithograph/internal/config"
	"github.com/petralab/lithograph/internal/i18n"
)

// LanguageCookie stores the visitor's catalog language preference.
const LanguageCookie = "lithograph_lang"

// CatalogHandlers contains HTTP handlers for the public catalog API.
type CatalogHandlers struct {
	store  *catalog.Store
	config *config.Config
}

// NewCatalogHandlers creates a new CatalogHandlers instance.
func NewCatalogHandlers(store *catalog.Store, cfg *config.Config) *CatalogHandlers {
	return &CatalogHandlers{store: store, config: cfg}
}

// requestLanguage resolves the catalog language for a request: the "lang"
// query parameter wins, then the language cookie, then the configured
// default.
func requestLanguage(r *http.Request, cfg *config.Config) i18n.Language {
	if lang, ok := i18n.FromCode(r.URL.Query().Get("lang")); ok {
		return lang
	}
	if cookie, err := r.Cookie(LanguageCookie); err == nil {
		if lang, ok := i18n.FromCode(cookie.Value); ok {
			return lang
		}
	}
	if lang, ok := i18n.FromCode(cfg.Language.Default); ok {
		return lang
	}
	return i18n.English
}

// ListMinerals handles GET /api/minerals - the catalog index, sorted by
// name in the request language.
func (h *CatalogHandlers) ListMinerals(w http.ResponseWriter, r *http.Request) {
	lang := requestLanguage(r, h.config)

	minerals := h.store.List(lang)
	summaries := make([]MineralSummary, 0, len(minerals))
	for _, m := range minerals {
		summaries = append(summaries, toSummary(m, lang))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"minerals": summaries,
		"total":    len(summaries),
		"language": lang.Code(),
	})
}

// GetMineral handles GET /api/minerals/{slug} - a single mineral's
// localized detail view.
func (h *CatalogHandlers) GetMineral(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		respondError(w, http.StatusBadRequest, "mineral slug is required", nil)
		return
	}

	mineral, err := h.store.Get(slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "mineral not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get mineral", err)
		return
	}

	respondJSON(w, http.StatusOK, toResponse(mineral, requestLanguage(r, h.config)))
}

// SetLanguageRequest is the request body for POST /api/language.
type SetLanguageRequest struct {
	Language string `json:"language"`
}

// SetLanguage handles POST /api/language - persists the visitor's catalog
// language in a cookie.
func (h *CatalogHandlers) SetLanguage(w http.ResponseWriter, r *http.Request) {
	var req SetLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	lang, ok := i18n.FromCode(req.Language)
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported language %q", req.Language), nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     LanguageCookie,
		Value:    lang.Code(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"language": lang.Code()})
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more to do.
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
