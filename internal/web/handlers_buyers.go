package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/buyerleads/internal/auth"
	"github.com/JonMunkholm/buyerleads/internal/buyer"
	"github.com/JonMunkholm/buyerleads/internal/core"
)

// multipartOverhead allows for form boundaries around the uploaded file.
const multipartOverhead = 1 << 20

// currentUser returns the user set by RequireUser.
func currentUser(r *http.Request) uuid.UUID {
	u, _ := auth.UserFromContext(r.Context())
	return u.ID
}

// buyerID parses the {id} route parameter. Malformed ids cannot exist so
// they are reported as not found.
func buyerID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &buyer.NotFoundError{ID: raw}
	}
	return id, nil
}

// parsePage parses the 1-based page query parameter.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// filterFromQuery reads list and export filters. Unknown codes are ignored.
func filterFromQuery(r *http.Request) buyer.Filter {
	q := r.URL.Query()
	code := func(field buyer.Field, key string) string {
		v := strings.TrimSpace(q.Get(key))
		if v == "" || !buyer.IsValidCode(field, v) {
			return ""
		}
		return v
	}
	return buyer.Filter{
		Search:       strings.TrimSpace(q.Get("search")),
		City:         buyer.City(code(buyer.FieldCity, "city")),
		PropertyType: buyer.PropertyType(code(buyer.FieldPropertyType, "propertyType")),
		Status:       buyer.Status(code(buyer.FieldStatus, "status")),
		Timeline:     buyer.Timeline(code(buyer.FieldTimeline, "timeline")),
	}
}

// readBody reads a JSON request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &buyer.StructuralInputError{Reason: "could not read request body", Err: err}
	}
	return body, nil
}

func (s *Server) handleListBuyers(w http.ResponseWriter, r *http.Request) {
	page, err := s.deps.Service.List(r.Context(), filterFromQuery(r), parsePage(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleCreateBuyer(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := s.deps.Service.Create(r.Context(), currentUser(r), body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleGetBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	detail, err := s.deps.Service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

func (s *Server) handleUpdateBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	updated, err := s.deps.Service.Update(r.Context(), currentUser(r), id, body)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Server) handleDeleteBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.deps.Service.Delete(r.Context(), currentUser(r), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// downloadWriter sets the download headers on the first write so a failure
// before any output can still be reported as a normal error response.
type downloadWriter struct {
	w           http.ResponseWriter
	contentType string
	filename    string
	started     bool
}

func (d *downloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		h := d.w.Header()
		h.Set("Content-Type", d.contentType)
		h.Set("Content-Disposition", `attachment; filename="`+d.filename+`"`)
		h.Set("Cache-Control", "no-store")
		d.w.WriteHeader(http.StatusOK)
	}
	return d.w.Write(p)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	dw := &downloadWriter{
		w:           w,
		contentType: format.ContentType(),
		filename:    core.ExportFilename(format, time.Now()),
	}
	if err := s.deps.Service.Export(r.Context(), filterFromQuery(r), format, dw); err != nil {
		if dw.started {
			// Headers are sent; the truncated download is all the client gets.
			return
		}
		s.respondError(w, r, err)
		return
	}
	if !dw.started {
		// Nothing matched and the format wrote no bytes.
		_, _ = dw.Write(nil)
	}
}

// readUpload returns the multipart "file" field, bounded by the import size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, err
		}
		return "", nil, &buyer.StructuralInputError{Reason: "could not read upload", Err: err}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, &buyer.StructuralInputError{Reason: "no file provided"}
	}
	if err != nil {
		return "", nil, &buyer.StructuralInputError{Reason: "could not read upload", Err: err}
	}
	defer file.Close()

	if header.Size > maxSize {
		return "", nil, &http.MaxBytesError{Limit: maxSize}
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, &buyer.StructuralInputError{Reason: "could not read upload", Err: err}
	}
	return header.Filename, data, nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	result, err := s.deps.Service.Import(r.Context(), currentUser(r), name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleCheckImport validates an upload without importing it.
func (s *Server) handleCheckImport(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	report, err := core.CheckImport(name, data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
