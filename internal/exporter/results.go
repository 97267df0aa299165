package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

const (
	summarySheet      = "Summary"
	employeesSheet    = "Employees"
	integrationsSheet = "Integrations"
	issuesSheet       = "Issues"
)

// 员工处理结果
const (
	resultSuccess = "success"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// ResultsFilename 结果报告文件名
func ResultsFilename(now time.Time) string {
	return fmt.Sprintf("bulk_change_results_%s.xlsx", now.Format("2006-01-02"))
}

// ResultsWorkbook 导出执行结果报告：Summary、Employees、Integrations、Issues 四页。
// progress 可为 nil。
func (e *Exporter) ResultsWorkbook(s wizard.State, progress func(ProgressEvent)) (*excelize.File, error) {
	status := s.ExecutionStatus
	if !status.Finished() {
		return nil, ErrNoResults
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 5, StageSummary)
	if err := writeTable(f, summarySheet, []string{"Item", "Value"}, e.summaryRows(s)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write sheet %s: %w", summarySheet, err)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 48)

	reportProgress(progress, 20, StageEmployees)
	if err := e.writeEmployees(f, s, progress); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write sheet %s: %w", employeesSheet, err)
	}

	reportProgress(progress, 80, StageIntegrations)
	if _, err := f.NewSheet(integrationsSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	var tpa [][]any
	for _, integration := range model.Integrations {
		if st, ok := status.TPAStatus[integration]; ok {
			tpa = append(tpa, []any{string(integration), string(st)})
		}
	}
	if err := writeTable(f, integrationsSheet, []string{"Integration", "Status"}, tpa); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write sheet %s: %w", integrationsSheet, err)
	}

	reportProgress(progress, 90, StageIssues)
	if _, err := f.NewSheet(issuesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeTable(f, issuesSheet, []string{"Severity", "Type", "Blocking", "Employee ID", "Message"}, issueRows(s.ValidationResults)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write sheet %s: %w", issuesSheet, err)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, StageDone)
	return f, nil
}

func (e *Exporter) summaryRows(s wizard.State) [][]any {
	st := s.ExecutionStatus
	index := e.machine.Dataset().Index()
	labels := make([]string, 0, len(s.SelectedFields))
	for _, id := range s.SelectedFields {
		labels = append(labels, index.Label(id))
	}
	finished := ""
	if st.FinishedAt != nil {
		finished = st.FinishedAt.Format(time.RFC3339)
	}
	return [][]any{
		{"Status", string(st.Status)},
		{"Employees", st.Total},
		{"Processed", st.Processed},
		{"Succeeded", st.SuccessCount},
		{"Failed", st.FailedCount},
		{"Skipped", len(st.SkippedEmployees)},
		{"Fields", strings.Join(labels, ", ")},
		{"Effective Date", e.machine.EffectiveDateLabel(s.EffectiveDate)},
		{"Scenario", string(s.OutcomeScenario)},
		{"Started At", st.StartedAt.Format(time.RFC3339)},
		{"Finished At", finished},
	}
}

// writeEmployees 每名员工一行：结果与所做修改
func (e *Exporter) writeEmployees(f *excelize.File, s wizard.State, progress func(ProgressEvent)) error {
	if _, err := f.NewSheet(employeesSheet); err != nil {
		return err
	}
	st := s.ExecutionStatus
	outcome := make(map[string]string, len(s.SelectedEmployees))
	for _, id := range st.FailedEmployees {
		outcome[id] = resultFailed
	}
	for _, id := range st.SkippedEmployees {
		outcome[id] = resultSkipped
	}

	changes := make([]string, 0, len(s.SelectedFields))
	index := e.machine.Dataset().Index()
	for _, id := range s.SelectedFields {
		if spec, ok := s.FieldValues[id]; ok {
			changes = append(changes, index.Label(id)+": "+spec.Describe())
		}
	}
	changeText := strings.Join(changes, "; ")

	rows := make([][]any, 0, len(s.SelectedEmployees))
	total := len(s.SelectedEmployees)
	for i, id := range s.SelectedEmployees {
		name, department := "", ""
		if emp, ok := e.machine.Dataset().Employee(id); ok {
			name, department = emp.FullName(), emp.Department
		}
		result, ok := outcome[id]
		if !ok {
			result = resultSuccess
		}
		row := []any{id, name, department, result, ""}
		if result != resultSkipped {
			row[4] = changeText
		}
		rows = append(rows, row)
		if total > 0 && (i+1)%10 == 0 {
			reportProgress(progress, 20+60*(i+1)/total, StageEmployees)
		}
	}
	if err := writeTable(f, employeesSheet, []string{"Employee ID", "Name", "Department", "Result", "Changes"}, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(employeesSheet, "A", "D", 16)
	_ = f.SetColWidth(employeesSheet, "E", "E", 60)
	return nil
}

// issueRows 校验问题展开为每名员工一行
func issueRows(r *model.ValidationResult) [][]any {
	if r == nil {
		return nil
	}
	var rows [][]any
	add := func(severity string, issues []model.ValidationIssue) {
		for _, issue := range issues {
			if len(issue.Employees) == 0 {
				rows = append(rows, []any{severity, issue.Type, issue.Blocking, "", issue.Message})
				continue
			}
			for _, id := range issue.Employees {
				rows = append(rows, []any{severity, issue.Type, issue.Blocking, id, issue.Message})
			}
		}
	}
	add("error", r.Errors)
	add("warning", r.Warnings)
	return rows
}
