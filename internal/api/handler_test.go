package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

func newTestRouter(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := mockdata.Build(mockdata.DefaultSeed, time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build dataset: %v", err)
	}
	store := session.NewStore(wizard.NewMachine(ds, simulator.NewScenarioValidator(ds)), time.Hour)
	h := NewHandler(store, Settings{CancelCutoff: 50, Engine: simulator.EngineScenario})

	r := gin.New()
	h.RegisterRoutes(r.Group("/api"))
	return h, r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v (body %s)", err, w.Body.String())
	}
	return resp
}

// readEvents 解析 SSE 响应体
func readEvents(t *testing.T, body string) []session.ProgressEvent {
	t.Helper()
	var events []session.ProgressEvent
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line, ok := strings.CutPrefix(sc.Text(), "data: ")
		if !ok {
			continue
		}
		var ev session.ProgressEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, ev)
	}
	return events
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: code = %d", w.Code)
	}
	return decodeSession(t, w).ID
}

// prepareSession 选择员工与字段、设置修改并通过校验
func prepareSession(t *testing.T, r http.Handler, id string, employees []string) {
	t.Helper()
	base := "/api/sessions/" + id
	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, base + "/employees", map[string]any{"ids": employees}},
		{http.MethodPut, base + "/fields", map[string]any{"ids": []string{"title"}}},
		{http.MethodPut, base + "/values/title", map[string]any{"type": "set", "value": "Staff Engineer"}},
		{http.MethodPost, base + "/validate", nil},
	}
	for _, s := range steps {
		if w := doJSON(t, r, s.method, s.path, s.body); w.Code != http.StatusOK {
			t.Fatalf("%s %s: code = %d, body %s", s.method, s.path, w.Code, w.Body.String())
		}
	}
}

// TestStatusAndCatalog 测试状态与目录接口
func TestStatusAndCatalog(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/status", nil)
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Employees != mockdata.EmployeeCount || status.Engine != simulator.EngineScenario {
		t.Errorf("status = %+v", status)
	}

	w = doJSON(t, r, http.MethodGet, "/api/steps/graph", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "digraph") {
		t.Errorf("graph: code = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/steps", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Select Employees") {
		t.Errorf("steps: code = %d", w.Code)
	}
}

// TestListEmployees 测试搜索与筛选
func TestListEmployees(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/employees?q=EMP0001", nil)
	var resp EmployeesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.Employees[0].ID != "EMP0001" {
		t.Errorf("search EMP0001: total = %d", resp.Total)
	}

	w = doJSON(t, r, http.MethodGet, "/api/employees?filter=status:On%20Leave", nil)
	resp = EmployeesResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, e := range resp.Employees {
		if e.Status != "On Leave" {
			t.Errorf("employee %s status = %s, want On Leave", e.ID, e.Status)
		}
	}
	if resp.Total == 0 {
		t.Error("expected at least one employee on leave")
	}
}

// TestParseFilters 测试筛选参数解析
func TestParseFilters(t *testing.T) {
	got := parseFilters([]string{"department:Engineering", "department:Sales", "bad", ":x"})
	if len(got) != 1 || len(got["department"]) != 2 {
		t.Errorf("parseFilters = %v", got)
	}
}

// TestSessionNotFound 测试未知会话返回 404
func TestSessionNotFound(t *testing.T) {
	_, r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete code = %d, want 404", w.Code)
	}
}

// TestRejectedActions 测试被拒绝的动作返回 400 且不修改状态
func TestRejectedActions(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id

	if w := doJSON(t, r, http.MethodPost, base+"/next", nil); w.Code != http.StatusBadRequest {
		t.Errorf("next without employees: code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/employees/toggle", map[string]string{"id": "NOPE"}); w.Code != http.StatusBadRequest {
		t.Errorf("toggle unknown employee: code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPut, base+"/scenarios", map[string]string{"outcome": "bogus"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad scenario: code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/drafts/none/load", nil); w.Code != http.StatusNotFound {
		t.Errorf("load missing draft: code = %d, want 404", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/execute/cancel", nil); w.Code != http.StatusConflict {
		t.Errorf("cancel without execution: code = %d, want 409", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, base, nil)
	if st := decodeSession(t, w).State; st.CurrentStep != wizard.StepSelect || len(st.SelectedEmployees) != 0 {
		t.Errorf("state changed after rejected actions: step %d, %d employees", st.CurrentStep, len(st.SelectedEmployees))
	}
}

// TestWizardFlow 测试从选择到执行再到导出的完整流程
func TestWizardFlow(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id
	prepareSession(t, r, id, []string{"EMP0001", "EMP0002", "EMP0003"})

	w := doJSON(t, r, http.MethodPost, base+"/step", map[string]int{"step": int(wizard.StepReview)})
	if w.Code != http.StatusOK {
		t.Fatalf("go to review: code = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, base+"/review", nil)
	var review wizard.Review
	if err := json.Unmarshal(w.Body.Bytes(), &review); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	if review.EmployeeCount != 3 || review.FieldCount != 1 {
		t.Errorf("review = %+v", review)
	}

	w = doJSON(t, r, http.MethodPost, base+"/execute", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("execute: code = %d, body %s", w.Code, w.Body.String())
	}
	events := readEvents(t, w.Body.String())
	if len(events) != 5 || events[0].Type != session.EventStart || events[4].Type != session.EventDone {
		t.Fatalf("execute events = %d, want start + 3 progress + done", len(events))
	}

	w = doJSON(t, r, http.MethodGet, base, nil)
	st := decodeSession(t, w).State
	if st.CurrentStep != wizard.StepExecute || !st.ExecutionStatus.Finished() {
		t.Fatalf("after execute: step %d, status %+v", st.CurrentStep, st.ExecutionStatus)
	}

	w = doJSON(t, r, http.MethodPost, base+"/export/results", nil)
	events = readEvents(t, w.Body.String())
	last := events[len(events)-1]
	if last.Type != session.EventDone {
		t.Fatalf("export last event = %+v", last)
	}
	url, _ := last.Data.(map[string]any)["downloadUrl"].(string)
	if !strings.HasPrefix(url, "/api/export/download/") {
		t.Fatalf("downloadUrl = %q", url)
	}

	w = doJSON(t, r, http.MethodGet, url, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != contentTypeXLSX {
		t.Errorf("download: code = %d, type %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w = doJSON(t, r, http.MethodGet, url, nil); w.Code != http.StatusNotFound {
		t.Errorf("second download: code = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, base+"/log", nil)
	var logResp struct {
		Entries []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logResp); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if len(logResp.Entries) == 0 || logResp.Entries[0].Type != "bulk_change" {
		t.Fatalf("log = %+v", logResp.Entries)
	}
	w = doJSON(t, r, http.MethodPost, base+"/log/"+logResp.Entries[0].ID+"/revert", nil)
	if w.Code != http.StatusOK {
		t.Errorf("revert: code = %d", w.Code)
	}
}

// TestAddLogEntry 测试追加操作日志
func TestAddLogEntry(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id

	w := doJSON(t, r, http.MethodPost, base+"/log", map[string]any{
		"summary": "Updated Department for James Smith",
		"details": map[string]any{"employeeId": "EMP0001", "field": "department"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add log: code = %d, body %s", w.Code, w.Body.String())
	}
	entry := decodeSession(t, w).State.ActionLog[0]
	if entry.Type != "single_change" || entry.Status != "success" || entry.ID == "" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Summary != "Updated Department for James Smith" || entry.Details["employeeId"] != "EMP0001" {
		t.Errorf("entry = %+v", entry)
	}

	if w := doJSON(t, r, http.MethodPost, base+"/log", map[string]any{"summary": " "}); w.Code != http.StatusBadRequest {
		t.Errorf("empty summary: code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, base+"/log", map[string]any{"summary": "x", "type": "revert"}); w.Code != http.StatusBadRequest {
		t.Errorf("revert type: code = %d, want 400", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/api/sessions/missing/log", map[string]any{"summary": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown session: code = %d, want 404", w.Code)
	}
}

// TestValidateStream 测试校验进度推送
func TestValidateStream(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id

	if w := doJSON(t, r, http.MethodPost, base+"/validate/stream", nil); w.Code != http.StatusBadRequest {
		t.Errorf("validate without employees: code = %d, want 400", w.Code)
	}

	doJSON(t, r, http.MethodPut, base+"/employees", map[string]any{"ids": []string{"EMP0001"}})
	w := doJSON(t, r, http.MethodPost, base+"/validate/stream", nil)
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %s", ct)
	}
	events := readEvents(t, w.Body.String())
	// start + 10 progress + done
	if len(events) != 12 {
		t.Fatalf("got %d events, want 12", len(events))
	}
	if events[len(events)-1].Type != session.EventDone {
		t.Errorf("last event = %s, want done", events[len(events)-1].Type)
	}

	w = doJSON(t, r, http.MethodGet, base, nil)
	if resp := decodeSession(t, w); resp.State.ValidationResults == nil {
		t.Error("validation results not stored")
	}
}

// TestDrafts 测试草稿保存与恢复
func TestDrafts(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id

	doJSON(t, r, http.MethodPut, base+"/employees", map[string]any{"ids": []string{"EMP0001", "EMP0002"}})
	w := doJSON(t, r, http.MethodPost, base+"/drafts", nil)
	var saved struct {
		DraftID string `json:"draftId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil || saved.DraftID == "" {
		t.Fatalf("save draft: %v, body %s", err, w.Body.String())
	}

	doJSON(t, r, http.MethodDelete, base+"/employees", nil)
	w = doJSON(t, r, http.MethodPost, base+"/drafts/"+saved.DraftID+"/load", nil)
	if st := decodeSession(t, w).State; len(st.SelectedEmployees) != 2 {
		t.Errorf("loaded draft has %d employees, want 2", len(st.SelectedEmployees))
	}

	if w = doJSON(t, r, http.MethodDelete, base+"/drafts/"+saved.DraftID, nil); w.Code != http.StatusOK {
		t.Errorf("delete draft: code = %d", w.Code)
	}
}

// TestImportSample 测试演示数据导入
func TestImportSample(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/sessions/"+id+"/import/employees?sample=true", nil)
	var resp ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.Valid != 15 || resp.Summary.Invalid != 2 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Session.State.CurrentStep != wizard.StepAttributes {
		t.Errorf("step = %d, want %d", resp.Session.State.CurrentStep, wizard.StepAttributes)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+id+"/import/complete?sample=true", nil)
	resp = ImportResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.State.CurrentStep != wizard.StepValidate || len(resp.Session.State.SelectedFields) != 3 {
		t.Errorf("complete import state: step %d, fields %v", resp.Session.State.CurrentStep, resp.Session.State.SelectedFields)
	}
}

// TestImportUpload 测试上传 CSV 员工名单
func TestImportUpload(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "employees.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("Employee ID\nEMP0001\nEMP0002\nGHOST\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/import/employees", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}
	var resp ImportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.Valid != 2 || resp.Summary.Invalid != 1 || resp.Report == nil {
		t.Errorf("summary = %+v, report = %v", resp.Summary, resp.Report)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sessions/"+id+"/import/employees", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("import without file: code = %d, want 400", w.Code)
	}
}

// TestExportTemplate 测试模板下载
func TestExportTemplate(t *testing.T) {
	_, r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/sessions/" + id

	if w := doJSON(t, r, http.MethodGet, base+"/template", nil); w.Code != http.StatusBadRequest {
		t.Errorf("template without employees: code = %d, want 400", w.Code)
	}

	doJSON(t, r, http.MethodPut, base+"/employees", map[string]any{"ids": []string{"EMP0001"}})
	doJSON(t, r, http.MethodPut, base+"/fields", map[string]any{"ids": []string{"title"}})

	w := doJSON(t, r, http.MethodGet, base+"/template?format=csv", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "Employee ID,Name,Job Title") {
		t.Errorf("csv template: code = %d, body %q", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bulk_change_template.csv") {
		t.Errorf("Content-Disposition = %s", cd)
	}

	w = doJSON(t, r, http.MethodGet, base+"/template?format=xlsx", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != contentTypeXLSX {
		t.Errorf("xlsx template: code = %d", w.Code)
	}

	if w = doJSON(t, r, http.MethodGet, base+"/template?format=pdf", nil); w.Code != http.StatusBadRequest {
		t.Errorf("pdf template: code = %d, want 400", w.Code)
	}
}

// TestDownloadStoreExpiry 测试下载令牌过期
func TestDownloadStoreExpiry(t *testing.T) {
	ds := newDownloadStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ds.now = func() time.Time { return now }

	token := ds.put("a.xlsx", contentTypeXLSX, []byte("x"), time.Minute)
	now = now.Add(2 * time.Minute)
	if _, err := ds.take(token); err != errTokenNotFound {
		t.Errorf("take expired token: err = %v", err)
	}
}
