package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"dundie-rewards/internal/core"
	"dundie-rewards/internal/loader"
	"dundie-rewards/internal/report"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 4 << 20

type ImportExportHandler struct {
	Svc *core.Service
}

func NewImportExportHandler(svc *core.Service) *ImportExportHandler {
	return &ImportExportHandler{Svc: svc}
}

// ExportCSV exports the employee view as CSV.
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, report.FormatCSV)
}

// ExportXLSX exports the employee view as XLSX.
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, report.FormatXLSX)
}

func (h *ImportExportHandler) export(c *gin.Context, format string) {
	var q core.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid query")
		return
	}

	// render into memory so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.Svc.Export(c.Request.Context(), q, format, &buf); err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "export failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"employees_%s.%s\"",
		time.Now().Format("20060102"), format))
	c.Data(http.StatusOK, report.ContentType(format), buf.Bytes())
}

// Load upserts employees from an uploaded CSV. The file may be sent as the
// multipart field "file" or as the raw request body.
func (h *ImportExportHandler) Load(c *gin.Context) {
	body, err := uploadBody(c)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	defer body.Close()

	records, rowErrs := loader.Parse(io.LimitReader(body, maxUploadBytes))
	result, err := h.Svc.LoadRecords(c.Request.Context(), records)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "load failed")
		return
	}

	skipped := make([]string, 0, len(rowErrs)+len(result.Skipped))
	for _, e := range append(rowErrs, result.Skipped...) {
		skipped = append(skipped, e.Error())
	}
	util.Success(c, util.Response{
		"employees": result.Results,
		"skipped":   skipped,
	})
}

func uploadBody(c *gin.Context) (io.ReadCloser, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot open upload: %w", err)
		}
		return f, nil
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, fmt.Errorf("csv body is required")
	}
	return c.Request.Body, nil
}
