package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomization(t *testing.T) {
	tests := []struct {
		name       string
		q1, q2, q3 Answer
		want       Risk
	}{
		{"concealed and balanced", Yes, Yes, No, Low},
		{"concealed, sequence unknown", NoInformation, ProbablyYes, ProbablyNo, Low},
		{"not concealed", Yes, No, No, High},
		{"concealment unknown with imbalance", Yes, NoInformation, Yes, High},
		{"non-random with imbalance", No, NoInformation, ProbablyYes, High},
		{"non-random sequence, concealed", No, Yes, No, SomeConcerns},
		{"concealment unknown, no imbalance", Yes, NoInformation, No, SomeConcerns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := Randomization(tt.q1, tt.q2, tt.q3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestRandomizationRejectsNA(t *testing.T) {
	_, err := Randomization(NotApplicable, Yes, No)
	assert.Error(t, err)
}

func TestDeviations(t *testing.T) {
	tests := []struct {
		name    string
		answers [7]Answer
		want    Risk
	}{
		{"double blind, ITT analysis", [7]Answer{No, No, NotApplicable, NotApplicable, NotApplicable, Yes, NotApplicable}, Low},
		{"aware but no deviations", [7]Answer{Yes, Yes, No, NotApplicable, NotApplicable, Yes, NotApplicable}, Low},
		{"unbalanced outcome-affecting deviations", [7]Answer{Yes, Yes, Yes, Yes, No, Yes, NotApplicable}, High},
		{"per-protocol analysis with impact", [7]Answer{No, No, No, NotApplicable, NotApplicable, No, Yes}, High},
		{"per-protocol analysis without impact", [7]Answer{No, No, NotApplicable, NotApplicable, NotApplicable, No, No}, SomeConcerns},
		{"deviations balanced between groups", [7]Answer{Yes, Yes, Yes, Yes, Yes, Yes, NotApplicable}, SomeConcerns},
		{"no information on deviations", [7]Answer{Yes, NoInformation, NoInformation, NotApplicable, NotApplicable, Yes, NotApplicable}, SomeConcerns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.answers
			j, err := Deviations(a[0], a[1], a[2], a[3], a[4], a[5], a[6])
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestMissingData(t *testing.T) {
	tests := []struct {
		name    string
		answers [4]Answer
		want    Risk
	}{
		{"nearly complete data", [4]Answer{Yes, NotApplicable, NotApplicable, NotApplicable}, Low},
		{"evidence of no bias", [4]Answer{No, Yes, NotApplicable, NotApplicable}, Low},
		{"missingness independent of value", [4]Answer{No, No, No, NotApplicable}, Low},
		{"missingness likely depends on value", [4]Answer{No, No, Yes, Yes}, High},
		{"depends possible but unlikely", [4]Answer{No, No, Yes, No}, SomeConcerns},
		{"no information on bias evidence", [4]Answer{No, NoInformation, Yes, NotApplicable}, SomeConcerns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.answers
			j, err := MissingData(a[0], a[1], a[2], a[3])
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestOutcomeMeasurement(t *testing.T) {
	tests := []struct {
		name    string
		answers [5]Answer
		want    Risk
	}{
		{"blinded assessors", [5]Answer{No, No, No, NotApplicable, NotApplicable}, Low},
		{"aware but uninfluenceable", [5]Answer{No, No, Yes, No, NotApplicable}, Low},
		{"inappropriate method", [5]Answer{Yes, No, No, NotApplicable, NotApplicable}, High},
		{"differential measurement", [5]Answer{No, Yes, No, NotApplicable, NotApplicable}, High},
		{"likely influenced", [5]Answer{No, No, Yes, Yes, Yes}, High},
		{"influenceable but unlikely", [5]Answer{No, No, Yes, Yes, No}, SomeConcerns},
		{"unknown differential measurement", [5]Answer{No, NoInformation, No, NotApplicable, NotApplicable}, SomeConcerns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.answers
			j, err := OutcomeMeasurement(a[0], a[1], a[2], a[3], a[4])
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestSelectiveReporting(t *testing.T) {
	tests := []struct {
		name       string
		q1, q2, q3 Answer
		want       Risk
	}{
		{"pre-specified plan followed", Yes, No, No, Low},
		{"selected from multiple outcomes", Yes, Yes, No, High},
		{"selected from multiple analyses", Yes, No, ProbablyYes, High},
		{"no plan but no selection", No, No, No, SomeConcerns},
		{"insufficient information", Yes, NoInformation, No, SomeConcerns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := SelectiveReporting(tt.q1, tt.q2, tt.q3)
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestOverallRoB2(t *testing.T) {
	tests := []struct {
		name  string
		risks [5]Risk
		want  Risk
	}{
		{"all low", [5]Risk{Low, Low, Low, Low, Low}, Low},
		{"one high dominates", [5]Risk{Low, High, Low, Low, Low}, High},
		{"two concerns stay concerns", [5]Risk{SomeConcerns, Low, SomeConcerns, Low, Low}, SomeConcerns},
		{"three concerns escalate", [5]Risk{SomeConcerns, SomeConcerns, SomeConcerns, Low, Low}, High},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := OverallRoB2(tt.risks)
			require.NoError(t, err)
			assert.Equal(t, tt.want, j.Risk)
		})
	}
}

func TestOverallRoB2RejectsVeryHigh(t *testing.T) {
	_, err := OverallRoB2([5]Risk{Low, Low, VeryHigh, Low, Low})
	assert.Error(t, err)
}

func TestEvaluateRoB2(t *testing.T) {
	answers := map[int][]Answer{
		1: {Yes, Yes, No},
		2: {No, No, NotApplicable, NotApplicable, NotApplicable, Yes, NotApplicable},
		3: {Yes, NotApplicable, NotApplicable, NotApplicable},
		4: {No, No, No, NotApplicable, NotApplicable},
		5: {Yes, No, No},
	}

	result, err := EvaluateRoB2(answers)
	require.NoError(t, err)
	require.Len(t, result.Domains, 5)
	for order, j := range result.Domains {
		assert.Equal(t, Low, j.Risk, "domain %d", order)
	}
	require.NotNil(t, result.Overall)
	assert.Equal(t, Low, result.Overall.Risk)
}

func TestEvaluateRoB2PartialAnswersSkipOverall(t *testing.T) {
	answers := map[int][]Answer{
		1: {Yes, Yes, No},
		5: {Yes, No, No},
	}

	result, err := EvaluateRoB2(answers)
	require.NoError(t, err)
	assert.Len(t, result.Domains, 2)
	assert.Nil(t, result.Overall)
}

func TestAnswerFromResponse(t *testing.T) {
	got, err := AnswerFromResponse("probably_no")
	require.NoError(t, err)
	assert.Equal(t, ProbablyNo, got)

	_, err = AnswerFromResponse("maybe")
	assert.Error(t, err)
}
