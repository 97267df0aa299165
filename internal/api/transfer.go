package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/exporter"
	"github.com/shivamuserology/bulk-change/internal/importer"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errNoUpload = errors.New("no file uploaded (field \"file\") and sample not requested")

// ImportResponse 导入响应
type ImportResponse struct {
	Summary wizard.ImportSummary `json:"summary"`
	Report  *importer.Report     `json:"report,omitempty"`
	Session SessionResponse      `json:"session"`
}

// wantsSample 是否使用演示数据
func wantsSample(c *gin.Context) bool {
	v := c.Query("sample")
	if v == "" {
		v = c.PostForm("sample")
	}
	return v == "true" || v == "1"
}

// upload 读取上传文件 file
func upload(c *gin.Context) (string, io.ReadCloser, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, errNoUpload
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	return fh.Filename, f, nil
}

// ImportEmployees 导入员工名单（CSV / XLSX，或 sample=true）
// POST /api/sessions/:id/import/employees
func (h *Handler) ImportEmployees(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var ids []string
	var report *importer.Report
	if wantsSample(c) {
		ids = importer.SampleEmployeeIDs()
	} else {
		name, f, err := upload(c)
		if err != nil {
			fail(c, err)
			return
		}
		defer f.Close()
		list, err := h.importer.ParseEmployeeList(name, f)
		if err != nil {
			fail(c, err)
			return
		}
		ids, report = list.IDs, &list.Report
	}

	h.applyImport(c, s, report, func(st wizard.State) (wizard.State, wizard.ImportSummary, error) {
		return h.machine.ImportCSVEmployees(st, ids)
	})
}

// ImportComplete 导入完整修改文件（长表格式，或 sample=true）
// POST /api/sessions/:id/import/complete
func (h *Handler) ImportComplete(c *gin.Context) {
	h.importPayload(c, h.importer.ParseCompleteFile)
}

// ImportTemplate 导入填写后的模板（宽表格式）
// POST /api/sessions/:id/import/template
func (h *Handler) ImportTemplate(c *gin.Context) {
	h.importPayload(c, h.importer.ParseTemplate)
}

func (h *Handler) importPayload(c *gin.Context, parse func(string, io.Reader) (*importer.CompleteFile, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var payload wizard.CompletePayload
	var report *importer.Report
	if wantsSample(c) {
		payload = importer.SampleCompletePayload()
	} else {
		name, f, err := upload(c)
		if err != nil {
			fail(c, err)
			return
		}
		defer f.Close()
		file, err := parse(name, f)
		if err != nil {
			fail(c, err)
			return
		}
		payload, report = file.Payload, &file.Report
	}

	h.applyImport(c, s, report, func(st wizard.State) (wizard.State, wizard.ImportSummary, error) {
		return h.machine.ImportCSVComplete(st, payload)
	})
}

func (h *Handler) applyImport(c *gin.Context, s *session.Session, report *importer.Report, action func(wizard.State) (wizard.State, wizard.ImportSummary, error)) {
	var summary wizard.ImportSummary
	st, err := s.Dispatch(func(st wizard.State) (wizard.State, error) {
		next, sum, err := action(st)
		summary = sum
		return next, err
	})
	if err != nil {
		fail(c, err)
		return
	}
	log.Printf("会话 %s 导入完成: 有效 %d, 无效 %d", s.ID, summary.Valid, summary.Invalid)
	c.JSON(http.StatusOK, ImportResponse{
		Summary: summary,
		Report:  report,
		Session: sessionResponse(s, st),
	})
}

// ExportTemplate 下载批量修改模板
// GET /api/sessions/:id/template?format=csv|xlsx
func (h *Handler) ExportTemplate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st := s.Snapshot()
	format := strings.ToLower(c.DefaultQuery("format", exporter.FormatCSV))

	var buf bytes.Buffer
	var contentType string
	switch format {
	case exporter.FormatCSV:
		if err := h.exporter.WriteTemplateCSV(&buf, st); err != nil {
			fail(c, err)
			return
		}
		contentType = contentTypeCSV
	case exporter.FormatXLSX:
		f, err := h.exporter.TemplateWorkbook(st)
		if err != nil {
			fail(c, err)
			return
		}
		defer f.Close()
		if err := f.Write(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		contentType = contentTypeXLSX
	default:
		fail(c, fmt.Errorf("%w: %s", exporter.ErrUnsupportedType, format))
		return
	}

	c.Header("Content-Disposition", contentDisposition(exporter.TemplateFilename(format)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ExportResults 生成结果报告（SSE 进度 + 完成后提供下载地址）
// POST /api/sessions/:id/export/results
func (h *Handler) ExportResults(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st := s.Snapshot()
	if !st.ExecutionStatus.Finished() {
		fail(c, exporter.ErrNoResults)
		return
	}

	es, ok := openStream(c)
	if !ok {
		return
	}
	es.send(session.ProgressEvent{
		Type:    session.EventStart,
		Message: "Exporting results",
		Data:    map[string]any{"employees": len(st.SelectedEmployees)},
	})

	lastPercent := -1
	f, err := h.exporter.ResultsWorkbook(st, func(p exporter.ProgressEvent) {
		if p.Percent == lastPercent {
			return
		}
		lastPercent = p.Percent
		es.send(session.ProgressEvent{
			Type:    session.EventProgress,
			Message: p.Stage,
			Data:    map[string]any{"percent": p.Percent},
		})
	})
	if err != nil {
		es.send(session.ProgressEvent{Type: session.EventError, Message: "Export failed: " + err.Error()})
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		es.send(session.ProgressEvent{Type: session.EventError, Message: "Write export failed: " + err.Error()})
		return
	}

	filename := exporter.ResultsFilename(h.machine.Now())
	token := h.downloads.put(filename, contentTypeXLSX, buf.Bytes(), downloadTTL)
	es.send(session.ProgressEvent{
		Type:    session.EventDone,
		Message: "Export complete",
		Data: map[string]any{
			"percent":     100,
			"filename":    filename,
			"downloadUrl": "/api/export/download/" + token,
		},
	})
}

// Download 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) Download(c *gin.Context) {
	item, err := h.downloads.take(c.Param("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Header("Content-Disposition", contentDisposition(item.filename))
	c.Data(http.StatusOK, item.contentType, item.data)
}

func contentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
