package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/neri-gut/jwparse/internal/discovery"
	"github.com/neri-gut/jwparse/internal/jwpub"
	"github.com/neri-gut/jwparse/internal/metastore"
	"github.com/neri-gut/jwparse/internal/payload"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".jwpub") {
		jsonError(w, "unsupported file type: "+filepath.Ext(header.Filename), http.StatusBadRequest)
		return
	}

	workDir, err := os.MkdirTemp("", "jwparse-extract-*")
	if err != nil {
		jsonError(w, "failed to allocate workspace", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(workDir)

	uploadPath := filepath.Join(workDir, "upload.jwpub")
	out, err := os.Create(uploadPath)
	if err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, io.LimitReader(file, s.cfg.MaxUploadBytes+1)); err != nil {
		out.Close()
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	if err := out.Close(); err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	m, err := s.parser.Parse(r.Context(), uploadPath, filepath.Join(workDir, "out"))
	if err != nil {
		s.log.Error("extraction failed", "file", header.Filename, "error", err)
		jsonError(w, err.Error(), extractStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// extractStatus maps pipeline failures to response codes: client-side
// archive defects are unprocessable, everything else is internal.
func extractStatus(err error) int {
	switch {
	case errors.Is(err, jwpub.ErrArchive),
		errors.Is(err, jwpub.ErrMissingEntry),
		errors.Is(err, metastore.ErrNoPublication),
		errors.Is(err, payload.ErrDecrypt),
		errors.Is(err, payload.ErrInflate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handlePublicationURL(w http.ResponseWriter, r *http.Request) {
	pub := r.URL.Query().Get("pub")
	lang := r.URL.Query().Get("lang")
	issue := r.URL.Query().Get("issue")
	if pub == "" || lang == "" {
		jsonError(w, "pub and lang are required", http.StatusBadRequest)
		return
	}

	u, err := s.discovery.FindURL(r.Context(), pub, lang, issue)
	if err != nil {
		if errors.Is(err, discovery.ErrNotAvailable) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("discovery failed", "pub", pub, "lang", lang, "error", err)
		jsonError(w, "discovery failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": u})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
