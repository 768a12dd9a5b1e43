package server

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/search"
)

const exportFilename = "cards.html"

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Preview serves the latest committed document of the preview session.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	res, gen := h.session.Current()
	if res == nil {
		writeJSON(w, http.StatusNotFound, errorBody("nothing rendered yet"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Render-Generation", strconv.FormatUint(gen, 10))
	_, _ = w.Write(res.HTML)
}

// Render converts the posted Markdown and commits it to the preview session.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRender(w, r)
	if !ok {
		return
	}

	res, committed, err := h.session.Render(r.Context(), req.input())
	if err != nil {
		h.writeRenderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRenderResponse(res, committed))
}

// Export returns the self-contained document as a download. It does not touch
// the preview session.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRender(w, r)
	if !ok {
		return
	}

	res, err := h.renderer.Convert(r.Context(), req.input())
	if err != nil {
		h.writeRenderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exportFilename}))
	_, _ = w.Write(res.HTML)
}

func (h *Handler) decodeRender(w http.ResponseWriter, r *http.Request) (renderRequest, bool) {
	var req renderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, statusForBodyError(err), errorBody("invalid request body"))
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return req, false
	}
	return req, true
}

func (h *Handler) writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, md2card.ErrEmptyMarkdown),
		errors.Is(err, md2card.ErrInvalidCardSize),
		errors.Is(err, md2card.ErrInvalidBackground),
		errors.Is(err, md2card.ErrInvalidScale):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, md2card.ErrConverterClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("renderer unavailable"))
	default:
		h.log.Error("render failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListImages lists stored images, oldest first.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	entries, err := h.store.List(r.Context())
	if err != nil {
		h.writeStoreError(w, "list images", err)
		return
	}
	out := listImagesResponse{Images: make([]imageDTO, 0, len(entries))}
	for _, e := range entries {
		out.Images = append(out.Images, newImageDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// UploadImage stores a multipart "file" field or a raw image body.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	data, err := readUpload(r)
	if err != nil {
		writeJSON(w, statusForBodyError(err), errorBody("invalid upload: "+err.Error()))
		return
	}
	h.saveImage(w, r, data)
}

// GetImage returns the raw bytes of a stored image.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	id := chi.URLParam(r, "id")
	uri, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "get image", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("image not found"))
		return
	}
	mimeType, data, err := imagestore.DecodeDataURI(uri)
	if err != nil {
		h.log.Error("decode image failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	_, _ = w.Write(data)
}

// DeleteImage removes a stored image.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, "delete image", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search proxies an image search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("image search disabled"))
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	results, err := h.searcher.Search(r.Context(), keyword)
	switch {
	case errors.Is(err, search.ErrEmptyKeyword):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	case errors.Is(err, search.ErrUpstream):
		h.log.Warn("image search failed", slog.String("keyword", keyword), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("image search unavailable"))
		return
	case err != nil:
		h.log.Error("image search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Keyword: keyword, Results: results})
}

// ImportImage downloads a search result and stores it.
func (h *Handler) ImportImage(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("image search disabled"))
		return
	}
	if !h.requireStore(w) {
		return
	}
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, statusForBodyError(err), errorBody("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	data, err := h.searcher.Download(r.Context(), req.URL)
	if err != nil {
		h.log.Warn("image download failed", slog.String("url", req.URL), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("image download failed"))
		return
	}
	h.saveImage(w, r, data)
}

func (h *Handler) saveImage(w http.ResponseWriter, r *http.Request, data []byte) {
	uri, err := imagestore.EncodeImage(data)
	switch {
	case errors.Is(err, imagestore.ErrImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(err.Error()))
		return
	case errors.Is(err, imagestore.ErrImageType):
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody(err.Error()))
		return
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	id := imagestore.NewImageID(h.now())
	evicted, err := h.store.Save(r.Context(), id, uri)
	if err != nil {
		h.writeStoreError(w, "save image", err)
		return
	}
	if len(evicted) > 0 {
		h.log.Info("images evicted", slog.Int("count", len(evicted)))
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		imageDTO: imageDTO{
			ID:        id,
			Reference: imagestore.Reference(id),
			Size:      int64(len(data)),
		},
		Evicted: evicted,
	})
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("image store disabled"))
		return false
	}
	return true
}

func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, imagestore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("image not found"))
	case errors.Is(err, imagestore.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, imagestore.ErrStoreClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("image store unavailable"))
	default:
		h.log.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// readUpload returns the multipart "file" part, or the whole body for any
// other content type.
func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}

	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func statusForBodyError(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
