package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditSpecUnmarshalNumberOrString(t *testing.T) {
	var spec EditSpec
	require.NoError(t, json.Unmarshal([]byte(`{"type":"increase","value":5,"isPercent":true}`), &spec))
	assert.Equal(t, EditSpec{Type: EditIncrease, Value: "5", IsPercent: true}, spec)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"set","value":"Senior Engineer"}`), &spec))
	assert.Equal(t, EditSpec{Type: EditSet, Value: "Senior Engineer"}, spec)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"set","value":null}`), &spec))
	assert.Equal(t, "", spec.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"type":"set","value":true}`), &spec))
}

func TestEditSpecApply(t *testing.T) {
	cases := []struct {
		name    string
		spec    EditSpec
		current string
		want    string
	}{
		{"set", EditSpec{Type: EditSet, Value: "Austin"}, "Remote", "Austin"},
		{"replace", EditSpec{Type: EditReplace, Value: "Core"}, "SMB", "Core"},
		{"increase absolute", EditSpec{Type: EditIncrease, Value: "1000"}, "100000", "101000"},
		{"increase percent", EditSpec{Type: EditIncrease, Value: "5", IsPercent: true}, "100000", "105000"},
		{"decrease percent", EditSpec{Type: EditDecrease, Value: "10", IsPercent: true}, "80000", "72000"},
		{"increase from empty", EditSpec{Type: EditIncrease, Value: "7"}, "", "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.spec.Apply(tc.current)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := EditSpec{Type: EditIncrease, Value: "x"}.Apply("1")
	assert.ErrorIs(t, err, ErrNonNumericValue)
}

func TestEditSpecValidate(t *testing.T) {
	comp := &Field{ID: "compensation", Type: FieldCurrency}
	title := &Field{ID: "title", Type: FieldText}
	dept := &Field{ID: "department", Type: FieldDropdown, Options: []string{"Sales", "HR"}}

	assert.NoError(t, EditSpec{Type: EditIncrease, Value: "5", IsPercent: true}.Validate(comp))
	assert.ErrorIs(t, EditSpec{Type: EditIncrease, Value: "5"}.Validate(title), ErrNonNumericField)
	assert.ErrorIs(t, EditSpec{Type: EditDecrease, Value: "abc"}.Validate(comp), ErrNonNumericValue)
	assert.ErrorIs(t, EditSpec{Type: "multiply", Value: "2"}.Validate(comp), ErrUnknownEditType)
	assert.ErrorIs(t, EditSpec{Type: EditSet, Value: "Legal"}.Validate(dept), ErrOptionNotAllowed)
	assert.NoError(t, EditSpec{Type: EditSet, Value: "HR"}.Validate(dept))
}

func TestEditSpecValidateNumbers(t *testing.T) {
	comp := &Field{ID: "compensation", Type: FieldCurrency}
	cases := []struct {
		name string
		spec EditSpec
		want error
	}{
		{"increase NaN", EditSpec{Type: EditIncrease, Value: "NaN"}, ErrNonNumericValue},
		{"decrease Inf", EditSpec{Type: EditDecrease, Value: "Inf"}, ErrNonNumericValue},
		{"increase -Infinity", EditSpec{Type: EditIncrease, Value: "-Infinity", IsPercent: true}, ErrNonNumericValue},
		{"set text on currency", EditSpec{Type: EditSet, Value: "abc"}, ErrInvalidNumber},
		{"replace NaN on currency", EditSpec{Type: EditReplace, Value: "NaN"}, ErrInvalidNumber},
		{"set number on currency", EditSpec{Type: EditSet, Value: "150000"}, nil},
		{"set empty on currency", EditSpec{Type: EditSet}, nil},
		{"increase decimal", EditSpec{Type: EditIncrease, Value: " 2.5 "}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate(comp)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := EditSpec{Type: EditIncrease, Value: "NaN"}.Apply("100000")
	assert.ErrorIs(t, err, ErrNonNumericValue)
	_, err = EditSpec{Type: EditIncrease, Value: "5"}.Apply("+Inf")
	assert.Error(t, err)
}

func TestEditSpecDescribe(t *testing.T) {
	assert.Equal(t, "+5%", EditSpec{Type: EditIncrease, Value: "5", IsPercent: true}.Describe())
	assert.Equal(t, "-1000", EditSpec{Type: EditDecrease, Value: "1000"}.Describe())
	assert.Equal(t, "Senior Engineer", EditSpec{Type: EditSet, Value: "Senior Engineer"}.Describe())
	assert.Equal(t, "Not set", EditSpec{Type: EditSet}.Describe())
}

func TestEmployeeWithValue(t *testing.T) {
	e := Employee{ID: "EMP0001", Compensation: 100}

	next, err := e.WithValue("compensation", "150")
	require.NoError(t, err)
	assert.Equal(t, 150.0, next.Compensation)
	assert.Equal(t, 100.0, e.Compensation)

	_, err = e.WithValue("compensation", "lots")
	assert.Error(t, err)

	_, err = e.WithValue("documents", "x")
	assert.Error(t, err)
}

func TestValidationResultCanProceed(t *testing.T) {
	var nilResult *ValidationResult
	assert.False(t, nilResult.CanProceed())

	ok := &ValidationResult{Status: ValidationWarning}
	assert.True(t, ok.CanProceed())

	blocked := &ValidationResult{Status: ValidationWarning, Errors: []ValidationIssue{{Type: "x", Blocking: true}}}
	assert.False(t, blocked.CanProceed())

	errored := &ValidationResult{Status: ValidationError}
	assert.False(t, errored.CanProceed())
}
