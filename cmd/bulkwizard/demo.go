package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/session"
	"github.com/shivamuserology/bulk-change/internal/simulator"
	"github.com/shivamuserology/bulk-change/internal/util"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

// demoOptions 演示参数
type demoOptions struct {
	Outcome    string
	Permission string
	Engine     string
	Employees  int
	Delay      time.Duration
}

// demoEdits 演示使用的字段修改
var demoEdits = []struct {
	Field string
	Spec  model.EditSpec
}{
	{"title", model.EditSpec{Type: model.EditSet, Value: "Senior Engineer"}},
	{"compensation", model.EditSpec{Type: model.EditIncrease, Value: "5", IsPercent: true}},
	{"workLocation", model.EditSpec{Type: model.EditSet, Value: "San Francisco"}},
}

var demoOpts demoOptions

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk through the wizard in the terminal",
	Long: `Run one bulk change from employee selection to post-execution results,
using the simulated validation and execution with the chosen scenarios.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout(), demoOpts)
	},
}

func init() {
	f := demoCmd.Flags()
	f.StringVar(&demoOpts.Outcome, "outcome", string(wizard.OutcomeHappyPath), "结果场景: happy_path/with_warnings/with_errors/partial_failure/tpa_failure")
	f.StringVar(&demoOpts.Permission, "permission", string(wizard.PermissionFullAccess), "权限场景: full_access/mixed/restricted")
	f.StringVar(&demoOpts.Engine, "engine", simulator.EngineScenario, "校验引擎: scenario/rules")
	f.IntVar(&demoOpts.Employees, "employees", 12, "选择的员工数量")
	f.DurationVar(&demoOpts.Delay, "delay", 50*time.Millisecond, "每名员工的模拟处理时间")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(w io.Writer, opts demoOptions) error {
	outcome, err := wizard.ParseOutcomeScenario(opts.Outcome)
	if err != nil {
		return err
	}
	permission, err := wizard.ParsePermissionScenario(opts.Permission)
	if err != nil {
		return err
	}

	data, err := mockdata.Default()
	if err != nil {
		return err
	}
	validator, err := simulator.NewValidator(opts.Engine, data)
	if err != nil {
		return err
	}
	machine := wizard.NewMachine(data, validator)
	store := session.NewStore(machine, 0)
	s := store.Create()

	dispatch := func(action func(wizard.State) (wizard.State, error)) (wizard.State, error) {
		return s.Dispatch(action)
	}

	st, err := dispatch(func(st wizard.State) (wizard.State, error) {
		next, err := machine.SetPermissionScenario(st, permission)
		if err != nil {
			return st, err
		}
		return machine.SetOutcomeScenario(next, outcome)
	})
	if err != nil {
		return err
	}
	engine := opts.Engine
	if engine == "" {
		engine = simulator.EngineScenario
	}
	printInfo(w, "Scenario: %s, permissions: %s, engine: %s", outcome, permission, engine)

	// 第 1 步：选择员工
	ids := demoEmployeeIDs(data, opts.Employees)
	printHeading(w, "Step 1 · %s", wizard.Steps[0].Name)
	if st, err = dispatch(func(st wizard.State) (wizard.State, error) {
		next, err := machine.SelectAllEmployees(st, ids)
		if err != nil {
			return st, err
		}
		return machine.NextStep(next)
	}); err != nil {
		return err
	}
	printSuccess(w, "Selected %d employees (%s … %s)", len(ids), ids[0], ids[len(ids)-1])

	// 第 2 步：选择字段，跳过当前权限下不可访问的字段
	printHeading(w, "Step 2 · %s", wizard.Steps[1].Name)
	var fields []string
	for _, e := range demoEdits {
		p := machine.FieldPermission(st, e.Field)
		if p == model.PermissionNoAccess {
			printWarning(w, "%s is not accessible under %s", data.Index().Label(e.Field), permission)
			continue
		}
		fields = append(fields, e.Field)
		printSuccess(w, "%s (%s)", data.Index().Label(e.Field), p)
	}
	if len(fields) == 0 {
		printError(w, "No editable fields under %s", permission)
		return nil
	}
	if st, err = dispatch(func(st wizard.State) (wizard.State, error) {
		next, err := machine.SetSelectedFields(st, fields)
		if err != nil {
			return st, err
		}
		return machine.NextStep(next)
	}); err != nil {
		return err
	}

	// 第 3 步：填写修改
	printHeading(w, "Step 3 · %s", wizard.Steps[2].Name)
	if st, err = dispatch(func(st wizard.State) (wizard.State, error) {
		for _, e := range demoEdits {
			if !st.IsFieldSelected(e.Field) {
				continue
			}
			next, err := machine.SetFieldValue(st, e.Field, e.Spec)
			if err != nil {
				return st, err
			}
			st = next
		}
		return machine.NextStep(st)
	}); err != nil {
		return err
	}
	for _, id := range fields {
		printSuccess(w, "%s: %s", data.Index().Label(id), st.FieldValues[id].Describe())
	}

	// 第 4 步：校验
	printHeading(w, "Step 4 · %s", wizard.Steps[3].Name)
	if st, err = dispatch(machine.RunValidation); err != nil {
		return err
	}
	printValidation(w, st.ValidationResults)
	if !st.CanProceed() {
		printError(w, "Validation blocked: fix the errors above before continuing")
		return nil
	}

	// 第 5 步：复核
	printHeading(w, "Step 5 · %s", wizard.Steps[4].Name)
	if st, err = dispatch(machine.NextStep); err != nil {
		return err
	}
	printReview(w, data, machine.ReviewSummary(st, 3))

	// 第 6 步：执行
	printHeading(w, "Step 6 · %s", wizard.Steps[5].Name)
	events, err := s.StartExecution(simulator.NewExecutor(opts.Delay))
	if err != nil {
		return err
	}
	for ev := range events {
		switch ev.Type {
		case session.EventProgress:
			if p, ok := ev.Data.(model.ExecutionStatus); ok {
				fmt.Fprintf(w, "  %s %6s  %s\n", util.ProgressBar(p.Progress, 24), util.FormatPercent(p.Progress), p.CurrentEmployee)
			}
		case session.EventError:
			printError(w, "%s", ev.Message)
			return nil
		default:
			printInfo(w, "%s", ev.Message)
		}
	}

	// 第 7 步：结果
	printHeading(w, "Step 7 · %s", wizard.Steps[6].Name)
	if st, err = dispatch(machine.NextStep); err != nil {
		return err
	}
	printResults(w, st)
	return nil
}

// demoEmployeeIDs 数据集前 n 名员工
func demoEmployeeIDs(data *mockdata.Dataset, n int) []string {
	all := data.Employees()
	n = min(max(n, 1), len(all))
	ids := make([]string, n)
	for i := range ids {
		ids[i] = all[i].ID
	}
	return ids
}

func printValidation(w io.Writer, r *model.ValidationResult) {
	sum := wizard.Summarize(r)
	printInfo(w, "Status: %s, passed %d, failed %d", sum.Status, sum.Passed, sum.Failed)
	for _, e := range r.Errors {
		label := "error"
		if e.Blocking {
			label = "blocking"
		}
		printError(w, "[%s] %s (%s)", label, e.Message, strings.Join(e.Employees, ", "))
	}
	for _, e := range r.Warnings {
		printWarning(w, "%s (%s)", e.Message, strings.Join(e.Employees, ", "))
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		printSuccess(w, "All checks passed")
	}
}

func printReview(w io.Writer, data *mockdata.Dataset, review wizard.Review) {
	printInfo(w, "%d employees, %d fields, effective %s", review.EmployeeCount, review.FieldCount, review.EffectiveDate)
	for _, ch := range review.Changes {
		line := fmt.Sprintf("%s: %s", ch.Label, ch.Change)
		if ch.NeedsApproval {
			printWarning(w, "%s (requires approval)", line)
		} else {
			printSuccess(w, "%s", line)
		}
	}
	if review.Message != "" {
		printInfo(w, "%s", review.Message)
	}
	for _, row := range review.Preview {
		fmt.Fprintf(w, "  %s %s\n", row.EmployeeID, row.Name)
		keys := make([]string, 0, len(row.Values))
		for k := range row.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := row.Values[k]
			f, _ := data.Index().Field(k)
			fmt.Fprintf(w, "    %-14s %s → %s\n", data.Index().Label(k), displayValue(f, v.Before), displayValue(f, v.After))
		}
	}
}

// displayValue 货币字段按千分位显示
func displayValue(f *model.Field, v string) string {
	if f == nil || f.Type != model.FieldCurrency {
		return v
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return util.FormatCurrency(n)
}

func printResults(w io.Writer, st wizard.State) {
	res := st.ExecutionStatus
	if res == nil {
		return
	}
	switch res.Status {
	case model.ExecutionSuccess:
		printSuccess(w, "Execution finished: %s", res.Status)
	case model.ExecutionCancelled:
		printWarning(w, "Execution finished: %s", res.Status)
	default:
		printError(w, "Execution finished: %s", res.Status)
	}
	printInfo(w, "Succeeded %d, failed %d, skipped %d", res.SuccessCount, res.FailedCount, len(res.SkippedEmployees))
	if len(res.FailedEmployees) > 0 {
		printError(w, "Failed: %s", strings.Join(res.FailedEmployees, ", "))
	}
	for _, in := range model.Integrations {
		status, ok := res.TPAStatus[in]
		if !ok {
			continue
		}
		switch status {
		case model.SyncSuccess:
			printSuccess(w, "%s: %s", in, status)
		case model.SyncPending:
			printWarning(w, "%s: %s", in, status)
		default:
			printError(w, "%s: %s", in, status)
		}
	}
	if len(st.ActionLog) > 0 {
		printInfo(w, "Logged: %s", st.ActionLog[0].Summary)
	}
}
