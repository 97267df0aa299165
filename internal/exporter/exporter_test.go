package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shivamuserology/bulk-change/internal/importer"
	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

var testNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestExporter(t *testing.T) (*Exporter, *wizard.Machine) {
	t.Helper()
	ds, err := mockdata.Build(mockdata.DefaultSeed, testNow)
	require.NoError(t, err)
	m := wizard.NewMachine(ds, simulator.NewScenarioValidator(ds),
		wizard.WithClock(func() time.Time { return testNow }))
	return NewExporter(m), m
}

func selection(t *testing.T, m *wizard.Machine, ids ...string) wizard.State {
	t.Helper()
	s, err := m.SelectAllEmployees(m.Initial(), ids)
	require.NoError(t, err)
	s, err = m.SetSelectedFields(s, []string{"title", "workLocation"})
	require.NoError(t, err)
	return s
}

func TestTemplateCSV(t *testing.T) {
	x, m := newTestExporter(t)
	s := selection(t, m, "EMP0002", "EMP0001")

	var buf bytes.Buffer
	require.NoError(t, x.WriteTemplateCSV(&buf, s))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Employee ID", "Name", "Job Title", "Work Location"}, records[0])
	assert.Equal(t, "EMP0002", records[1][0])

	emp, _ := m.Dataset().Employee("EMP0001")
	assert.Equal(t, []string{"EMP0001", emp.FullName(), emp.Title, emp.WorkLocation}, records[2])
}

func TestTemplateRequiresEmployees(t *testing.T) {
	x, m := newTestExporter(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, x.WriteTemplateCSV(&buf, m.Initial()), ErrNoEmployees)

	_, err := x.TemplateWorkbook(m.Initial())
	assert.ErrorIs(t, err, ErrNoEmployees)
}

func TestTemplateWorkbook(t *testing.T) {
	x, m := newTestExporter(t)
	s := selection(t, m, "EMP0001", "EMP0002", "EMP0003")

	f, err := x.TemplateWorkbook(s)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Template", "Fields"}, f.GetSheetList())
	rows, err := f.GetRows("Template")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	dvs, err := f.GetDataValidations("Template")
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	assert.Equal(t, "D2:D4", dvs[0].Sqref)

	fields, err := f.GetRows("Fields")
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"title", "Job Title", "employment", "text", "full"}, fields[1][:5])
}

func TestTemplateRoundTrip(t *testing.T) {
	x, m := newTestExporter(t)
	s := selection(t, m, "EMP0001", "EMP0002")

	f, err := x.TemplateWorkbook(s)
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Template", "C2", "Head of Demos"))
	require.NoError(t, f.SetCellStr("Template", "C3", "Head of Demos"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	_ = f.Close()

	parsed, err := importer.NewCoordinator(m.Dataset()).ParseTemplate(TemplateFilename(FormatXLSX), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"EMP0001", "EMP0002"}, parsed.Payload.EmployeeIDs)
	assert.Equal(t, []string{"title"}, parsed.Payload.Fields)
	assert.Equal(t, "Head of Demos", parsed.Payload.Values["title"].Value)
}

func finishedState(t *testing.T, m *wizard.Machine, n int) wizard.State {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, mockdata.EmployeeID(i))
	}
	s := selection(t, m, ids...)
	s, err := m.SetFieldValue(s, "title", model.EditSpec{Type: model.EditSet, Value: "Staff Engineer"})
	require.NoError(t, err)
	s, err = m.SetOutcomeScenario(s, wizard.OutcomePartialFailure)
	require.NoError(t, err)
	s, err = m.RunValidation(s)
	require.NoError(t, err)
	s, err = m.BeginExecution(s)
	require.NoError(t, err)
	s, err = m.CompleteExecution(s, simulator.FinalStatus(ids, wizard.OutcomePartialFailure))
	require.NoError(t, err)
	return s
}

func TestResultsWorkbook(t *testing.T) {
	x, m := newTestExporter(t)
	s := finishedState(t, m, 12)

	var events []ProgressEvent
	f, err := x.ResultsWorkbook(s, func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Employees", "Integrations", "Issues"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Status", "partial"}, summary[1])
	assert.Equal(t, []string{"Failed", "2"}, summary[5])

	employees, err := f.GetRows("Employees")
	require.NoError(t, err)
	require.Len(t, employees, 13)
	assert.Equal(t, "success", employees[1][3])
	assert.Equal(t, "failed", employees[12][3])
	assert.Equal(t, "Job Title: Staff Engineer", employees[1][4])

	integrations, err := f.GetRows("Integrations")
	require.NoError(t, err)
	assert.Len(t, integrations, len(model.Integrations)+1)

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, ProgressEvent{Percent: 100, Stage: StageDone}, last)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].Percent, events[i-1].Percent)
	}
}

func TestResultsWorkbookRequiresFinishedExecution(t *testing.T) {
	x, m := newTestExporter(t)
	_, err := x.ResultsWorkbook(m.Initial(), nil)
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "bulk_change_template.csv", TemplateFilename(FormatCSV))
	assert.Equal(t, "bulk_change_results_2026-01-15.xlsx", ResultsFilename(testNow))
}

func TestIssueRows(t *testing.T) {
	rows := issueRows(&model.ValidationResult{
		Errors:   []model.ValidationIssue{{Type: "invalid_email", Blocking: true, Employees: []string{"A", "B"}, Message: "m"}},
		Warnings: []model.ValidationIssue{{Type: "tpa_conflict", Message: "w"}},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"error", "invalid_email", true, "B", "m"}, rows[1])
	assert.Equal(t, []any{"warning", "tpa_conflict", false, "", "w"}, rows[2])
	assert.Nil(t, issueRows(nil))
}

func TestTemplateWorkbookReopens(t *testing.T) {
	x, m := newTestExporter(t)
	f, err := x.TemplateWorkbook(selection(t, m, "EMP0001"))
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	_ = f.Close()

	g, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	_ = g.Close()
}
