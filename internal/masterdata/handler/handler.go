// Package handler wires the generic master-data endpoints for one entity
// descriptor onto a chi router. The route shape is identical for every
// entity; only the resource segment and module name differ.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"auditadmin/internal/masterdata/service"
	"auditadmin/internal/masterdata/store"
	"auditadmin/internal/masterdata/transfer"
	id "auditadmin/pkg/domain"
	dErrors "auditadmin/pkg/domain-errors"
	"auditadmin/pkg/paging"
	"auditadmin/pkg/platform/httputil"
	"auditadmin/pkg/requestcontext"
)

// Handler serves one master-data resource.
type Handler struct {
	svc    *service.Service
	porter *transfer.CSV
	logger *slog.Logger
}

// New constructs a handler for one entity service.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		porter: transfer.NewCSV(svc),
		logger: logger,
	}
}

// Register mounts the resource routes.
func (h *Handler) Register(r chi.Router) {
	resource := "/" + h.svc.Descriptor().Resource
	r.Route(resource, func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/export", h.HandleExport)
		r.Post("/import", h.HandleImport)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Patch("/{id}/status", h.HandleStatus)
	})
}

func (h *Handler) moduleName() string { return h.svc.ModuleName() }

// listFilter builds the store filter from query parameters. The parentId
// format is checked here so a malformed value fails fast as a 400.
func (h *Handler) listFilter(r *http.Request) (store.ListFilter, error) {
	q := r.URL.Query()
	filter := store.ListFilter{
		Search:          q.Get("search"),
		IncludeInactive: q.Get("includeInactive") == "true",
		Page:            paging.ParseParams(q),
	}
	if parent := q.Get("parentId"); parent != "" {
		parentID, err := id.ParseRecordID(parent)
		if err != nil {
			return store.ListFilter{}, err
		}
		filter.ParentID = &parentID
	}
	return filter, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	filter, err := h.listFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.svc.List(ctx, filter)
	if err != nil {
		h.logError(ctx, "list failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "records listed",
		"request_id", requestcontext.RequestID(ctx),
		"module", h.moduleName(),
		"total", result.TotalCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s records retrieved", h.moduleName()), result)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rec, err := h.svc.Get(ctx, recordID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s retrieved", h.moduleName()), rec)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.svc.Create(ctx, req.ToInput())
	if err != nil {
		h.logError(ctx, "create failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record created",
		"request_id", requestID,
		"module", h.moduleName(),
		"record_id", rec.ID.String(),
	)
	httputil.WriteSuccess(w, http.StatusCreated, fmt.Sprintf("%s created", h.moduleName()), rec)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RecordRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.svc.Update(ctx, recordID, req.ToInput())
	if err != nil {
		h.logError(ctx, "update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s updated", h.moduleName()), rec)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.svc.Delete(ctx, recordID); err != nil {
		h.logError(ctx, "delete failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "record deleted",
		"request_id", requestcontext.RequestID(ctx),
		"module", h.moduleName(),
		"record_id", recordID.String(),
	)
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s deleted", h.moduleName()), nil)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	recordID, err := id.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.svc.SetActive(ctx, recordID, *req.Active)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	verb := "deactivated"
	if rec.Active {
		verb = "activated"
	}
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s %s", h.moduleName(), verb), rec)
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := h.listFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename=%q`, h.svc.Descriptor().Resource+".csv"))
	cw := &countingWriter{w: w}
	if err := h.porter.Export(ctx, cw, filter); err != nil {
		h.logError(ctx, "export failed", err)
		if cw.written == 0 {
			// Nothing has reached the client yet; replace the csv headers
			// with an error envelope instead of an empty 200.
			w.Header().Del("Content-Disposition")
			httputil.WriteError(w, err)
			return
		}
		// The stream is already committed; abandon it mid-file.
	}
}

// countingWriter tracks whether any bytes were handed to the ResponseWriter,
// which is the point of no return for the response status.
type countingWriter struct {
	w       io.Writer
	written int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.written += int64(n)
	return n, err
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "a csv file upload is required"))
		return
	}
	defer file.Close()

	summary, err := h.porter.Import(ctx, file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.svc.NoteImport(ctx, summary.Imported, len(summary.Rejected))

	h.logger.InfoContext(ctx, "records imported",
		"request_id", requestcontext.RequestID(ctx),
		"module", h.moduleName(),
		"imported", summary.Imported,
		"rejected", len(summary.Rejected),
	)
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%s import finished", h.moduleName()), summary)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"module", h.moduleName(),
		"error", err,
	)
}
