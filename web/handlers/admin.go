package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/petralab/lithograph/internal/catalog"
	"github.com/petralab/lithograph/internal/config"
	"github.com/petralab/lithograph/internal/history"
	"github.com/petralab/lithograph/internal/i18n"
	"github.com/petralab/lithograph/internal/suggest"
	"github.com/petralab/lithograph/pkg/types"
)

// Suggester drafts metadata fields and translations. The concrete
// implementation is suggest.Client; tests stub it.
type Suggester interface {
	Enabled() bool
	SuggestFields(ctx context.Context, name, hint string) (*suggest.Suggestion, error)
	Translate(ctx context.Context, languageName string, source suggest.Translation) (*suggest.Translation, error)
}

// RunLister reads the report run audit log.
type RunLister interface {
	List(ctx context.Context, slug string, limit int) ([]*history.Run, error)
}

// AdminHandlers contains the authenticated curation endpoints.
type AdminHandlers struct {
	store     *catalog.Store
	config    *config.Config
	sessions  *SessionStore
	suggester Suggester
	runs      RunLister
}

// NewAdminHandlers creates a new AdminHandlers instance. suggester and
// runs are optional.
func NewAdminHandlers(store *catalog.Store, cfg *config.Config, sessions *SessionStore, suggester Suggester, runs RunLister) *AdminHandlers {
	return &AdminHandlers{
		store:     store,
		config:    cfg,
		sessions:  sessions,
		suggester: suggester,
		runs:      runs,
	}
}

// LoginRequest is the request body for POST /api/admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login - exchanges the admin password for a
// session cookie.
func (h *AdminHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if !PasswordMatches(h.config.Security.AdminPassword, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid password", nil)
		return
	}

	token := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.config.Security.SecurityMode != "development",
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Logout handles POST /api/admin/logout - revokes the current session.
func (h *AdminHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		h.sessions.Revoke(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SuggestRequest is the request body for POST /api/admin/suggest.
type SuggestRequest struct {
	Name string `json:"name"`
	Hint string `json:"hint,omitempty"`
}

// Suggest handles POST /api/admin/suggest - drafts metadata fields for a
// mineral name. Returns 503 when no AI backend is configured.
func (h *AdminHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil || !h.suggester.Enabled() {
		respondError(w, http.StatusServiceUnavailable, "field suggestion is not configured", nil)
		return
	}

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	suggestion, err := h.suggester.SuggestFields(r.Context(), req.Name, req.Hint)
	if err != nil {
		if errors.Is(err, suggest.ErrCircuitOpen) {
			respondError(w, http.StatusServiceUnavailable, "suggestion backend is unavailable", err)
			return
		}
		respondError(w, http.StatusBadGateway, "failed to draft suggestion", err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// PublishRequest is the request body for POST /api/admin/minerals. Records
// is keyed by language code and must contain an English entry; missing
// languages are machine-translated when requested and a backend is
// configured.
type PublishRequest struct {
	Family      string                        `json:"family"`
	Records     map[string]catalog.DiskRecord `json:"records"`
	ImageBase64 string                        `json:"image_base64,omitempty"`
	ImageExt    string                        `json:"image_ext,omitempty"`
	Translate   bool                          `json:"translate,omitempty"`
}

// Publish handles POST /api/admin/minerals - adds a mineral folder to the
// catalog.
func (h *AdminHandlers) Publish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	english, ok := req.Records[types.EnglishLang]
	if !ok || english.CommonName == "" {
		respondError(w, http.StatusBadRequest, "an English record with a common name is required", nil)
		return
	}

	var imageBytes []byte
	if req.ImageBase64 != "" {
		var err error
		imageBytes, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "image_base64 is not valid base64", err)
			return
		}
		if req.ImageExt == "" {
			req.ImageExt = "jpg"
		}
	}

	if req.Translate {
		h.fillTranslations(r.Context(), req.Records)
	}

	mineral, err := h.store.Publish(catalog.PublishInput{
		Family:     req.Family,
		Records:    req.Records,
		ImageBytes: imageBytes,
		ImageExt:   req.ImageExt,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to publish mineral", err)
		return
	}

	log.Info().Str("slug", mineral.Slug).Str("family", mineral.Family).Msg("mineral published")
	respondJSON(w, http.StatusCreated, toResponse(mineral, i18n.English))
}

// fillTranslations machine-translates the English record's free text into
// the catalog languages missing from records. Failures fall back to the
// English text for that language.
func (h *AdminHandlers) fillTranslations(ctx context.Context, records map[string]catalog.DiskRecord) {
	if h.suggester == nil || !h.suggester.Enabled() {
		return
	}

	english := records[types.EnglishLang]
	for _, lang := range i18n.All() {
		if lang == i18n.English {
			continue
		}
		if _, ok := records[lang.Code()]; ok {
			continue
		}

		record := english
		translated, err := h.suggester.Translate(ctx, lang.Name(), suggest.Translation{
			CommonName:  english.CommonName,
			Description: english.Description,
			Notes:       english.Notes,
		})
		if err != nil {
			log.Warn().Err(err).Str("language", lang.Code()).Msg("translation failed, falling back to English text")
		} else {
			record.CommonName = translated.CommonName
			record.Description = translated.Description
			record.Notes = translated.Notes
		}
		records[lang.Code()] = record
	}
}

// History handles GET /api/admin/history - lists recent report runs,
// optionally filtered by mineral slug.
func (h *AdminHandlers) History(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusServiceUnavailable, "report history is not configured", nil)
		return
	}

	runs, err := h.runs.List(r.Context(), r.URL.Query().Get("slug"), parseInt(r.URL.Query().Get("limit"), 50))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list report runs", err)
		return
	}
	if runs == nil {
		runs = []*history.Run{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"total": len(runs),
	})
}
