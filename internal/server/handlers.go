package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iksnae/chat-dashboard/internal"
	"github.com/iksnae/chat-dashboard/internal/export"
)

const dayLayout = "2006-01-02"

var contentTypes = map[string]string{
	"json":  "application/json",
	"jsonl": "application/x-ndjson",
	"yaml":  "application/yaml",
	"csv":   "text/csv; charset=utf-8",
	"xml":   "application/xml",
	"txt":   "text/plain; charset=utf-8",
	"md":    "text/markdown; charset=utf-8",
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"verticals": len(s.opts.Verticals),
	})
}

// vertical resolves the :vertical parameter, answering 404 when unknown
func (s *Server) vertical(c *gin.Context) (*internal.VerticalConfig, bool) {
	cfg, ok := s.opts.Verticals[c.Param("vertical")]
	if !ok {
		c.JSON(http.StatusNotFound, internal.Failure{Kind: "not_found", Detail: fmt.Sprintf("unknown vertical %q", c.Param("vertical"))})
		return nil, false
	}
	return cfg, true
}

// report builds the report for the request's vertical and optional window
func (s *Server) report(c *gin.Context) (*internal.Report, bool) {
	cfg, ok := s.vertical(c)
	if !ok {
		return nil, false
	}

	from, to, err := parseWindow(c.Query("from"), c.Query("to"), cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, internal.Failure{Kind: "bad_request", Detail: err.Error()})
		return nil, false
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	snap, err := s.loadSnapshot(c.Request.Context(), cfg, refresh)
	if err != nil {
		writeFailure(c, err)
		return nil, false
	}

	if !from.IsZero() || !to.IsZero() {
		snap, err = snap.Refilter(c.Request.Context(), from, to)
		if err != nil {
			writeFailure(c, err)
			return nil, false
		}
	}
	return snap.Report(), true
}

func (s *Server) snapshot(c *gin.Context) {
	report, ok := s.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	exporter, err := export.NewExporter(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, internal.Failure{Kind: "bad_request", Detail: err.Error()})
		return
	}

	report, ok := s.report(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(exporter, report, &buf); err != nil {
		writeFailure(c, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s-%s.%s", report.Vertical, time.Now().Format("20060102"), exporter.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentTypes[exporter.Extension()], buf.Bytes())
}

func (s *Server) listSettings(c *gin.Context) {
	cfg, ok := s.vertical(c)
	if !ok {
		return
	}
	settings, err := s.opts.Settings.List(c.Request.Context(), cfg.Name)
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) getSettings(c *gin.Context) {
	cfg, ok := s.vertical(c)
	if !ok {
		return
	}
	settings, err := s.opts.Settings.Get(c.Request.Context(), cfg.Name, c.Param("agent"))
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

type putSettingsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
	Merge  bool              `json:"merge"`
}

func (s *Server) putSettings(c *gin.Context) {
	cfg, ok := s.vertical(c)
	if !ok {
		return
	}

	var req putSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, internal.Failure{Kind: "bad_request", Detail: err.Error()})
		return
	}

	settings, err := s.opts.Settings.Put(c.Request.Context(), cfg.Name, c.Param("agent"), req.Fields, req.Merge)
	if err != nil {
		writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// parseWindow reads optional YYYY-MM-DD bounds in the vertical's time zone
func parseWindow(fromRaw, toRaw string, cfg *internal.VerticalConfig) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = time.ParseInLocation(dayLayout, fromRaw, cfg.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", fromRaw)
		}
	}
	if toRaw != "" {
		if to, err = time.ParseInLocation(dayLayout, toRaw, cfg.Location()); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", toRaw)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date %s is before from date %s", toRaw, fromRaw)
	}
	return from, to, nil
}

// writeFailure renders err as a {kind, detail} body with a status matching its kind
func writeFailure(c *gin.Context, err error) {
	failure := internal.AsFailure(err)

	status := http.StatusInternalServerError
	var transportErr *internal.TransportError
	var shapeErr *internal.ShapeError
	switch {
	case errors.As(err, &transportErr):
		status = http.StatusBadGateway
	case errors.As(err, &shapeErr), errors.Is(err, internal.ErrDemoPayload):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, internal.ErrSettingsNotFound):
		status = http.StatusNotFound
		failure.Kind = "not_found"
	}

	c.JSON(status, failure)
}
