package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presentation-quality-server/internal/domain"
)

// handleListReports pages through stored reports, newest first.
func (s *Server) handleListReports(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultReportLimit)
	if err != nil || limit <= 0 || limit > maxReportLimit {
		s.respondValidation(c, "limit", fmt.Sprintf("limit must be between 1 and %d", maxReportLimit), c.Query("limit"))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		s.respondValidation(c, "offset", "offset must be a non-negative integer", c.Query("offset"))
		return
	}

	ctx := c.Request.Context()
	records, err := s.history.List(ctx, limit, offset)
	if err != nil {
		s.storageError(c, err)
		return
	}
	total, err := s.history.Count(ctx)
	if err != nil {
		s.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleGetReport returns one stored report with its body.
func (s *Server) handleGetReport(c *gin.Context) {
	record, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storageError(c, err)
		return
	}
	if record == nil {
		s.respondError(c, http.StatusNotFound, domain.ErrNotFoundCode, "Report not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleDeleteReport removes a stored report.
func (s *Server) handleDeleteReport(c *gin.Context) {
	err := s.history.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		s.respondError(c, http.StatusNotFound, domain.ErrNotFoundCode, "Report not found", c.Param("id"))
		return
	}
	if err != nil {
		s.storageError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExportReports streams every stored report as a JSON download.
func (s *Server) handleExportReports(c *gin.Context) {
	filename := fmt.Sprintf("reports-%s.json", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := s.history.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		// Headers are gone; the client sees a truncated body.
		s.logger.WithError(err).Error("Report export failed")
	}
}

// handleImportReports loads an export document. Records whose id or
// fingerprint already exists are skipped.
func (s *Server) handleImportReports(c *gin.Context) {
	imported, skipped, err := s.history.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondBindError(c, err)
			return
		}
		if isDecodeError(err) {
			s.respondError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid export document", err.Error())
			return
		}
		s.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

func (s *Server) storageError(c *gin.Context, err error) {
	s.logger.WithError(err).Error("History storage error")
	s.respondError(c, http.StatusInternalServerError, domain.ErrStorage, "Report storage unavailable", "")
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, domain.ErrInvalidSeverity)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
