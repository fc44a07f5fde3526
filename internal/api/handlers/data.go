package handlers

import (
	"bytes"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardfolio/cardfolio/internal/reports"
	"github.com/cardfolio/cardfolio/internal/services"
)

// DataHandler serves CSV export/import, spreadsheet reports and database
// backups.
type DataHandler struct {
	export    *services.ExportService
	importer  *services.BulkImportService
	reports   *reports.Generator
	backupDir string
}

func NewDataHandler(export *services.ExportService, importer *services.BulkImportService, reports *reports.Generator, backupDir string) *DataHandler {
	return &DataHandler{
		export:    export,
		importer:  importer,
		reports:   reports,
		backupDir: backupDir,
	}
}

func (h *DataHandler) ExportCardsCSV(c *gin.Context) {
	// Buffer the whole file so a mid-export failure still yields a clean
	// JSON error instead of a truncated download.
	var buf bytes.Buffer
	if err := h.export.ExportCardsCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cards.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DataHandler) ExportSalesCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.export.ExportSalesCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DataHandler) ExportReport(c *gin.Context) {
	data, err := h.reports.Generate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ImportCards ingests a CSV file uploaded as the multipart field "file".
// Row-level failures are reported per row; a well-formed file with some bad
// rows still imports the good ones.
func (h *DataHandler) ImportCards(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := h.importer.ImportCards(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.SuccessCount == 0 && result.ErrorCount > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

type backupRequest struct {
	Path string `json:"path"`
}

// Backup copies the live database file. The destination can be supplied in
// the request body; otherwise a timestamped name under the configured backup
// directory is used.
func (h *DataHandler) Backup(c *gin.Context) {
	var req backupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	dest := req.Path
	if dest == "" {
		dest = filepath.Join(h.backupDir, services.DefaultBackupName(time.Now()))
	}

	if err := h.export.BackupDatabase(c.Request.Context(), dest); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": dest})
}
