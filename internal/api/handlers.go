package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"trailhead/internal/editor"
	"trailhead/internal/models"
	"trailhead/internal/render"

	"github.com/rs/zerolog"
)

func (s *HTTPServer) handlePostBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := s.svc.Posts.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
}

func (s *HTTPServer) handleListReviews(w http.ResponseWriter, r *http.Request) {
	typeID, err := pathID(r, "typeId")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	q, err := listQuery(r)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	reviewType := r.PathValue("type")
	reviews, total, err := s.svc.Reviews.List(r.Context(), reviewType, typeID, q)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	summary, err := s.svc.Reviews.Summary(r.Context(), reviewType, typeID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"reviews": reviews,
		"total":   total,
		"limit":   q.Limit,
		"offset":  q.Offset,
		"summary": summary,
	})
}

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	typeID, err := pathID(r, "typeId")
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var review models.Review
	if err := decodeJSON(w, r, &review); err != nil {
		writeFailure(w, r, err)
		return
	}
	review.Type = r.PathValue("type")
	review.TypeID = typeID

	if err := s.svc.Reviews.Create(r.Context(), &review); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "review": review})
}

func (s *HTTPServer) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if err := s.svc.Reviews.Delete(r.Context(), id); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.svc.Uploads == nil {
		writeError(w, http.StatusServiceUnavailable, "uploads are disabled")
		return
	}

	limit := s.svc.Uploads.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, r, models.NewValidationError("file", "must be at most %d MB", limit>>20))
			return
		}
		writeFailure(w, r, models.NewValidationError("file", "is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeFailure(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	res, err := s.svc.Uploads.Upload(r.Context(), data)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"url":          res.URL,
		"imageUrl":     res.URL,
		"thumbnailUrl": res.ThumbnailURL,
	})
}

type openFormRequest struct {
	Kind editor.Kind `json:"kind"`
	ID   int64       `json:"id"`
}

type formResponse struct {
	Success      bool                 `json:"success"`
	Session      string               `json:"session"`
	Form         editor.FormState     `json:"form"`
	Error        string               `json:"error,omitempty"`
	Saved        int64                `json:"saved,omitempty"`
	Itineraries  []models.Itinerary   `json:"itineraries,omitempty"`
	Destinations []models.Destination `json:"destinations,omitempty"`
}

func (s *HTTPServer) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	var req openFormRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}

	session, state, err := s.svc.Forms.Open(r.Context(), req.Kind, req.ID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, formResponse{Success: true, Session: session, Form: state})
}

func (s *HTTPServer) handleGetForm(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	state, err := s.svc.Forms.Get(r.Context(), session)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{Success: true, Session: session, Form: state})
}

func (s *HTTPServer) handleDiscardForm(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Forms.Discard(r.Context(), r.PathValue("session")); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleFormAction answers 200 even when the form rejects the action; the
// rejection travels in form.error so the client can keep the operator's input.
func (s *HTTPServer) handleFormAction(w http.ResponseWriter, r *http.Request) {
	var action editor.Action
	if err := decodeJSON(w, r, &action); err != nil {
		writeFailure(w, r, err)
		return
	}

	session := r.PathValue("session")
	out, err := s.svc.Forms.Apply(r.Context(), session, action)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{
		Success:      out.State.Error == "",
		Session:      session,
		Form:         out.State,
		Error:        out.State.Error,
		Saved:        out.Saved,
		Itineraries:  out.Itineraries,
		Destinations: out.Destinations,
	})
}

func (s *HTTPServer) handleExportItineraries(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.Export.WriteItineraries(r.Context(), &buf); err != nil {
		writeFailure(w, r, err)
		return
	}

	name := fmt.Sprintf("itineraries-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) handleItineraryListPage(w http.ResponseWriter, r *http.Request) {
	view := s.svc.Pages.Itineraries(r.Context())
	s.writePage(w, r, view.Page, func(out io.Writer) error { return s.svc.Templates.Listing(out, view) })
}

func (s *HTTPServer) handleDestinationListPage(w http.ResponseWriter, r *http.Request) {
	view := s.svc.Pages.Destinations(r.Context())
	s.writePage(w, r, view.Page, func(out io.Writer) error { return s.svc.Templates.Listing(out, view) })
}

func (s *HTTPServer) handleItineraryPage(w http.ResponseWriter, r *http.Request) {
	view := s.itineraryView(r)
	s.writePage(w, r, view.Page, func(out io.Writer) error { return s.svc.Templates.Itinerary(out, view) })
}

func (s *HTTPServer) handleDestinationPage(w http.ResponseWriter, r *http.Request) {
	var view render.DestinationView
	if id, err := pathID(r, "id"); err != nil {
		view.Page = render.NotFoundPage("/destinations")
	} else {
		view = s.svc.Pages.Destination(r.Context(), id)
	}
	s.writePage(w, r, view.Page, func(out io.Writer) error { return s.svc.Templates.Destination(out, view) })
}

func (s *HTTPServer) handleBrochure(w http.ResponseWriter, r *http.Request) {
	view := s.itineraryView(r)
	if !view.Ready() {
		s.writePage(w, r, view.Page, func(out io.Writer) error { return s.svc.Templates.Itinerary(out, view) })
		return
	}

	var buf bytes.Buffer
	if err := render.Brochure(&buf, view); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("id", view.ID).Msg("brochure failed")
		http.Error(w, msgRetry, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=itinerary-%d.pdf", view.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) itineraryView(r *http.Request) render.ItineraryView {
	id, err := pathID(r, "id")
	if err != nil {
		return render.ItineraryView{Page: render.NotFoundPage("/itineraries")}
	}
	return s.svc.Pages.Itinerary(r.Context(), id)
}

// writePage renders into a buffer first so a template error still yields a
// clean 500.
func (s *HTTPServer) writePage(w http.ResponseWriter, r *http.Request, page render.Page, exec func(io.Writer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("template failed")
		http.Error(w, msgRetry, http.StatusInternalServerError)
		return
	}

	code := http.StatusOK
	switch page.State {
	case render.StateNotFound:
		code = http.StatusNotFound
	case render.StateFailed:
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
