package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amlscreen/amlreport/pkg/archive"
	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/jsonutil"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/pipeline"
)

// HeaderArchiveRecord names the archive record created for a PDF response.
const HeaderArchiveRecord = "X-Archive-Record"

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	w.WriteHeader(status)
	_ = jsonutil.MarshalWrite(w, v, "  ")
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	writeJSON(w, status, errorBody{
		Error:     msg,
		Field:     field,
		RequestID: w.Header().Get(HeaderRequestID),
	})
}

// fail maps an error to a response. Input-shape errors are the caller's
// fault; anything else is logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var fe *model.FieldError
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit), "")
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Error(), fe.Path)
	case errors.Is(err, model.ErrInputShape):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, archive.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found", "")
	default:
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": defaults.Version,
	})
}

func (s *Server) handleReport(f pipeline.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.readBody(w, r)
		if err != nil {
			s.fail(w, r, err)
			return
		}

		res, err := s.opts.Pipeline.Run(r.Context(), pipeline.Request{
			Input:   body,
			Format:  f,
			Derive:  queryBool(r, "derive"),
			Archive: s.opts.Archive != nil,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}

		h := w.Header()
		h.Set("Content-Type", f.ContentType())
		h.Set("Content-Length", strconv.Itoa(len(res.Output)))
		if f == pipeline.FormatPDF {
			h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, res.Filename(f)))
		}
		if res.Record != nil {
			h.Set(HeaderArchiveRecord, res.Record.ID)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Output)
	}
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	_, c, err := s.opts.Pipeline.Assess(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.opts.Archive.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.opts.Archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", defaults.ContentTypePDF)
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, defaults.AttachmentName(rec.ReportID, "pdf")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.PDF)
}
