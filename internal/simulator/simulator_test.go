package simulator

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivamuserology/bulk-change/internal/mockdata"
	"github.com/shivamuserology/bulk-change/internal/model"
	"github.com/shivamuserology/bulk-change/internal/wizard"
)

func testDataset(t *testing.T) *mockdata.Dataset {
	t.Helper()
	ds, err := mockdata.Build(mockdata.DefaultSeed, time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return ds
}

func ids(from, to int) []string {
	out := []string{}
	for i := from; i <= to; i++ {
		out = append(out, mockdata.EmployeeID(i))
	}
	return out
}

func TestScenarioValidatorWithErrors(t *testing.T) {
	v := NewScenarioValidator(testDataset(t))

	res := v.Validate(wizard.ValidationRequest{
		SelectedEmployees: []string{"EMP0047", "EMP0048", "EMP0049"},
		Outcome:           wizard.OutcomeWithErrors,
	})

	assert.Equal(t, model.ValidationError, res.Status)
	assert.Len(t, res.Errors, 3)
	assert.Equal(t, 2, res.BlockingErrors())
	assert.ElementsMatch(t, []string{"EMP0047", "EMP0048", "EMP0049"}, res.FailedEmployees)
	assert.Empty(t, res.PassedEmployees)
	assert.False(t, res.CanProceed())
}

func TestScenarioValidatorPartitionsEdgeCases(t *testing.T) {
	v := NewScenarioValidator(testDataset(t))
	selected := []string{"EMP0001", "EMP0047", "EMP0002", "EMP0055"}

	res := v.Validate(wizard.ValidationRequest{SelectedEmployees: selected, Outcome: wizard.OutcomeWithErrors})

	assert.Equal(t, []string{"EMP0001", "EMP0002"}, res.PassedEmployees)
	assert.Equal(t, []string{"EMP0047", "EMP0055"}, res.FailedEmployees)
}

func TestScenarioValidatorInvariantHolds(t *testing.T) {
	v := NewScenarioValidator(testDataset(t))
	selected := append(ids(44, 55), "GHOST1")

	for _, outcome := range wizard.OutcomeScenarios {
		t.Run(string(outcome), func(t *testing.T) {
			res := v.Validate(wizard.ValidationRequest{SelectedEmployees: selected, Outcome: outcome})
			assert.Equal(t, len(selected), len(res.PassedEmployees)+len(res.FailedEmployees))
			assert.Contains(t, res.FailedEmployees, "GHOST1")
			assert.False(t, res.CanProceed())
		})
	}
}

func TestScenarioValidatorIsDeterministic(t *testing.T) {
	v := NewScenarioValidator(testDataset(t))
	req := wizard.ValidationRequest{SelectedEmployees: ids(1, 10), Outcome: wizard.OutcomeWithWarnings}

	a := v.Validate(req)
	b := v.Validate(req)
	assert.Equal(t, a, b)
	assert.Equal(t, model.ValidationWarning, a.Status)
	assert.Len(t, a.Warnings, 2)
	assert.True(t, a.CanProceed())
}

func TestRulesValidatorFlagsEdgeCases(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	v, err := NewRulesValidator(testDataset(t), rules)
	require.NoError(t, err)

	res := v.Validate(wizard.ValidationRequest{
		SelectedEmployees: []string{"EMP0001", "EMP0047", "EMP0048", "EMP0049", "EMP0052"},
		SelectedFields:    []string{"title"},
		FieldValues:       map[string]model.EditSpec{"title": {Type: model.EditSet, Value: "Lead"}},
	})

	types := map[string]bool{}
	for _, e := range res.Errors {
		types[e.Type] = e.Blocking
	}
	assert.True(t, types["circular_manager"])
	assert.True(t, types["invalid_email"])
	blocking, ok := types["salary_band"]
	assert.True(t, ok)
	assert.False(t, blocking)

	assert.Equal(t, model.ValidationError, res.Status)
	assert.Equal(t, []string{"EMP0001", "EMP0052"}, res.PassedEmployees)
	assert.Equal(t, []string{"EMP0047", "EMP0048", "EMP0049"}, res.FailedEmployees)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "tpa_conflict", res.Warnings[0].Type)
}

func TestRulesValidatorEvaluatesProjectedValues(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	v, err := NewRulesValidator(testDataset(t), rules)
	require.NoError(t, err)

	res := v.Validate(wizard.ValidationRequest{
		SelectedEmployees: []string{"EMP0053"},
		SelectedFields:    []string{"compensation"},
		FieldValues: map[string]model.EditSpec{
			"compensation": {Type: model.EditIncrease, Value: "5", IsPercent: true},
		},
	})

	assert.Equal(t, model.ValidationWarning, res.Status)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "benefits_impact", res.Warnings[0].Type)
	assert.Equal(t, []string{"EMP0053"}, res.PassedEmployees)
}

func TestRulesValidatorRejectsBadExpression(t *testing.T) {
	_, err := NewRulesValidator(testDataset(t), []Rule{{Type: "bad", Severity: SeverityError, When: "compensation >"}})
	assert.Error(t, err)

	_, err = LoadRules([]byte("rules: []"))
	assert.Error(t, err)
}

func TestRulesValidatorLogsRuntimeFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	v, err := NewRulesValidator(testDataset(t), []Rule{{Type: "out_of_range", Severity: SeverityError, When: `changed[5] == "title"`}})
	require.NoError(t, err)

	res := v.Validate(wizard.ValidationRequest{
		SelectedEmployees: []string{"EMP0001"},
		SelectedFields:    []string{"title"},
		FieldValues:       map[string]model.EditSpec{"title": {Type: model.EditSet, Value: "Lead"}},
	})
	assert.Equal(t, []string{"EMP0001"}, res.PassedEmployees)
	assert.Contains(t, buf.String(), "规则 out_of_range 求值失败")
}

func TestProgramCacheReusesCompiledRules(t *testing.T) {
	rules := []Rule{
		{Type: "a", Severity: SeverityWarning, When: "compensation > 1"},
		{Type: "b", Severity: SeverityError, When: "compensation > 1"},
	}
	v, err := NewRulesValidator(testDataset(t), rules)
	require.NoError(t, err)
	assert.Equal(t, 1, v.cache.Len())
}

func TestFinalStatusPartialFailure(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 19, 55} {
		selected := ids(1, n)
		st := FinalStatus(selected, wizard.OutcomePartialFailure)

		assert.Equal(t, n*9/10, st.SuccessCount, "n=%d", n)
		assert.Equal(t, (n+9)/10, st.FailedCount, "n=%d", n)
		assert.Equal(t, n, st.SuccessCount+st.FailedCount)
		assert.Equal(t, selected[n-st.FailedCount:], st.FailedEmployees)
		assert.Equal(t, model.ExecutionPartial, st.Status)
	}
}

func TestFinalStatusTPAFailure(t *testing.T) {
	st := FinalStatus(ids(1, 4), wizard.OutcomeTPAFailure)
	assert.Equal(t, model.ExecutionSuccess, st.Status)
	assert.Equal(t, 4, st.SuccessCount)
	assert.Equal(t, model.SyncSuccess, st.TPAStatus[model.IntegrationSlack])
	assert.Equal(t, model.SyncPending, st.TPAStatus[model.IntegrationGoogleWorkspace])
	assert.Equal(t, model.SyncFailed, st.TPAStatus[model.IntegrationGithub])
}

func TestExecutorReportsProgress(t *testing.T) {
	x := NewExecutor(0)
	var seen []int
	st := x.Execute(context.Background(), wizard.ExecutionRequest{
		EmployeeIDs: ids(1, 5),
		Outcome:     wizard.OutcomeHappyPath,
	}, func(p model.ExecutionStatus) {
		seen = append(seen, p.Processed)
	})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
	assert.Equal(t, model.ExecutionSuccess, st.Status)
	assert.Equal(t, 5, st.SuccessCount)
	assert.NotNil(t, st.FinishedAt)
}

func TestExecutorStopsOnCancel(t *testing.T) {
	x := NewExecutor(0)
	ctx, cancel := context.WithCancel(context.Background())
	selected := ids(1, 10)

	st := x.Execute(ctx, wizard.ExecutionRequest{EmployeeIDs: selected}, func(p model.ExecutionStatus) {
		if p.Processed == 3 {
			cancel()
		}
	})

	assert.Equal(t, model.ExecutionCancelled, st.Status)
	assert.Equal(t, 3, st.Processed)
	assert.Equal(t, 3, st.SuccessCount)
	assert.Equal(t, 0, st.FailedCount)
	assert.Equal(t, selected[3:], st.SkippedEmployees)
	assert.True(t, st.Finished())
}

func TestRunStages(t *testing.T) {
	var got []StageProgress
	err := RunStages(context.Background(), 0, func(p StageProgress) { got = append(got, p) })
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, 100, got[9].Progress)
	assert.Len(t, got[9].Completed, len(ValidationStages))
	assert.Equal(t, "Checking business rules", got[0].Current)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, RunStages(ctx, time.Millisecond, func(StageProgress) {}), context.Canceled)
}

func TestNewValidatorEngines(t *testing.T) {
	ds := testDataset(t)
	v, err := NewValidator(EngineRules, ds)
	require.NoError(t, err)
	assert.IsType(t, &RulesValidator{}, v)

	v, err = NewValidator("", ds)
	require.NoError(t, err)
	assert.IsType(t, &ScenarioValidator{}, v)

	_, err = NewValidator("magic", ds)
	assert.Error(t, err)
}
