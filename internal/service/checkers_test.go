package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presentation-quality-server/internal/knowledge"
)

func TestCheckMedications(t *testing.T) {
	report := CheckMedications("Patient on Warfarin, aspirin and diphenhydramine")

	require.Len(t, report.BeersMedications, 1)
	assert.Equal(t, "diphenhydramine", report.BeersMedications[0].Drug)
	assert.NotEmpty(t, report.BeersMedications[0].Alternative)

	require.Len(t, report.Interactions, 1)
	assert.Equal(t, Interaction{Drug: "warfarin", Interactor: "aspirin", Description: "Increased bleeding risk"}, report.Interactions[0])

	require.Len(t, report.MonitoringAlerts, 1)
	assert.Equal(t, "warfarin", report.MonitoringAlerts[0].Drug)
	assert.True(t, report.HasFindings())
}

func TestCheckMedications_MonitoringPresent(t *testing.T) {
	report := CheckMedications("Warfarin 5 mg daily, monitor INR weekly")

	assert.Empty(t, report.MonitoringAlerts)
	assert.Empty(t, report.Interactions)
}

func TestCheckMedications_Clean(t *testing.T) {
	report := CheckMedications("Acetaminophen as needed")

	assert.NotNil(t, report.BeersMedications)
	assert.NotNil(t, report.Interactions)
	assert.NotNil(t, report.MonitoringAlerts)
	assert.False(t, report.HasFindings())
}

func TestClassifyLab(t *testing.T) {
	sodium, ok := knowledge.LookupLab("sodium")
	require.True(t, ok)

	tests := []struct {
		value float64
		want  LabStatus
	}{
		{140, LAB_NORMAL},
		{135, LAB_NORMAL},
		{128, LAB_LOW},
		{150, LAB_HIGH},
		{14, LAB_LOW},
		{13.4, LAB_IMPLAUSIBLE},
		{1450, LAB_HIGH},
		{1451, LAB_IMPLAUSIBLE},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyLab(sodium, tt.value), "%v", tt.value)
	}
}

func TestCheckLabValues(t *testing.T) {
	report := CheckLabValues("Sodium 2000, potassium: 4.2, glucose of 50")

	require.Len(t, report.Values, 3)
	assert.Equal(t, "sodium", report.Values[0].Lab)
	assert.Equal(t, LAB_IMPLAUSIBLE, report.Values[0].Status)
	assert.Equal(t, "135-145 mmol/L", report.Values[0].NormalRange)
	assert.Equal(t, "potassium", report.Values[1].Lab)
	assert.Equal(t, 4.2, report.Values[1].Value)
	assert.Equal(t, LAB_NORMAL, report.Values[1].Status)
	assert.Equal(t, "glucose", report.Values[2].Lab)
	assert.Equal(t, LAB_LOW, report.Values[2].Status)

	require.Len(t, report.Unusual, 1)
	assert.Equal(t, "sodium", report.Unusual[0].Lab)
}

func TestCheckLabValues_NoValues(t *testing.T) {
	report := CheckLabValues("No labs were drawn")

	assert.Empty(t, report.Values)
	assert.NotNil(t, report.Values)
	assert.NotNil(t, report.Unusual)
}
