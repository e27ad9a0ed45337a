package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shiroyama-web/kanri/content"
)

const (
	maxContentBodySize = 1 << 20
	maxUploadSize      = 10 << 20
)

func (a *API) contentKind(w http.ResponseWriter, r *http.Request) (content.Kind, bool) {
	if a.contents == nil {
		writeError(w, http.StatusNotFound, "content storage not configured")
		return "", false
	}
	kind, err := content.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown content kind")
		return "", false
	}
	return kind, true
}

// handleGetContent implements GET /api/content/{kind}.
func (a *API) handleGetContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := a.contentKind(w, r)
	if !ok {
		return
	}

	data, err := a.contents.GetContent(kind)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no content yet")
			return
		}
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("content read failure")
		writeError(w, http.StatusInternalServerError, "content read failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handlePutContent implements PUT /api/content/{kind}.
func (a *API) handlePutContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := a.contentKind(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxContentBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	if err := a.contents.PutContent(kind, data); err != nil {
		if errors.Is(err, content.ErrInvalidJSON) {
			writeError(w, http.StatusBadRequest, "payload must be valid JSON")
			return
		}
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("content write failure")
		writeError(w, http.StatusInternalServerError, "content write failed")
		return
	}

	a.log.Info().Str("kind", string(kind)).Msg("content updated")
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

// handlePublicContent implements GET /api/public/content/{kind}: the
// unauthenticated read the marketing front-ends poll, with permissive CORS.
func (a *API) handlePublicContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := a.contentKind(w, r)
	if !ok {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

	data, err := a.contents.GetContent(kind)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no content yet")
			return
		}
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("public content read failure")
		writeError(w, http.StatusInternalServerError, "content read failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Key     string `json:"key"`
}

// handleUpload implements POST /api/upload/{kind} (multipart, field "file").
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind, ok := a.contentKind(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key, err := a.contents.PutImage(kind, contentType, data)
	if err != nil {
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("image store failure")
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	a.log.Info().Str("kind", string(kind)).Str("key", key).Int("bytes", len(data)).Msg("image uploaded")
	writeJSON(w, http.StatusCreated, uploadResponse{Success: true, Key: key})
}

// handleListImages implements GET /api/images/{kind}.
func (a *API) handleListImages(w http.ResponseWriter, r *http.Request) {
	kind, ok := a.contentKind(w, r)
	if !ok {
		return
	}

	infos, err := a.contents.ListImages(kind)
	if err != nil {
		a.log.Error().Err(err).Str("kind", string(kind)).Msg("image list failure")
		writeError(w, http.StatusInternalServerError, "listing failed")
		return
	}
	if infos == nil {
		infos = []content.ObjectInfo{}
	}
	writeJSON(w, http.StatusOK, infos)
}

// handleGetImage implements GET /api/image/{key}.
func (a *API) handleGetImage(w http.ResponseWriter, r *http.Request) {
	if a.contents == nil {
		writeError(w, http.StatusNotFound, "content storage not configured")
		return
	}

	data, contentType, err := a.contents.GetImage(chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such image")
			return
		}
		a.log.Error().Err(err).Msg("image read failure")
		writeError(w, http.StatusInternalServerError, "image read failed")
		return
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// handleDeleteImage implements DELETE /api/image/{key}.
func (a *API) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if a.contents == nil {
		writeError(w, http.StatusNotFound, "content storage not configured")
		return
	}

	if err := a.contents.DeleteImage(chi.URLParam(r, "key")); err != nil {
		a.log.Error().Err(err).Msg("image delete failure")
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
