package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"stillwriter/internal/blob"
	"stillwriter/internal/canonical"
	"stillwriter/internal/screenwriter"
	"stillwriter/internal/store"
)

// maxUploadBytes caps upload size; a phone photo is well under this.
const maxUploadBytes = 32 << 20

// server holds the handlers' collaborators.
type server struct {
	service     *screenwriter.Service
	screenplays store.ScreenplayStore
	blobs       blob.Store
}

// handleGenerate accepts a multipart photo upload and returns the generated
// screenplay. The optional "genre" form field constrains the scene.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpError(w, http.StatusBadRequest, "malformed multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		httpError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	genre := r.FormValue("genre")

	result, err := s.service.Generate(r.Context(), contents, contentType, genre)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// handleGet serves a stored screenplay by id.
func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.screenplays.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rec == nil {
		httpError(w, http.StatusNotFound, "screenplay not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleList serves the screenplay gallery, newest first, cursor-paginated.
// ?public=1 restricts the listing to public records.
func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOptions{
		Cursor:     r.URL.Query().Get("cursor"),
		PublicOnly: r.URL.Query().Get("public") == "1" || r.URL.Query().Get("public") == "true",
	}

	page, err := s.screenplays.List(r.Context(), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// handleImage serves a canonical image directly from the blob store.
func (s *server) handleImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := s.blobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			httpError(w, http.StatusNotFound, "image not found")
			return
		}
		log.Error().Err(err).Str("asset_id", id).Msg("Failed to fetch image")
		httpError(w, http.StatusBadGateway, "storage unavailable")
		return
	}

	w.Header().Set("Content-Type", canonical.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleHealth reports liveness.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
