package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArithmeticAverage(t *testing.T) {
	t.Parallel()
	assert.Zero(t, ArithmeticAverage(nil))
	assert.Equal(t, 2.5, ArithmeticAverage([]float64{1, 2, 3, 4}))
}

func TestStandardDeviations(t *testing.T) {
	t.Parallel()
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 2.0, PopulationStandardDeviation(values))
	assert.InDelta(t, 2.13809, SampleStandardDeviation(values), 0.0001)
	assert.Zero(t, SampleStandardDeviation([]float64{1}))
	assert.Zero(t, PopulationStandardDeviation(nil))
}

func TestDownsideDeviation(t *testing.T) {
	t.Parallel()
	got := DownsideDeviation([]float64{0.1, -0.1, 0.2, -0.2}, 0)
	assert.InDelta(t, 0.1118, got, 0.0001)
	assert.Zero(t, DownsideDeviation(nil, 0))
}

func TestCalculateSharpeRatio(t *testing.T) {
	t.Parallel()
	assert.Zero(t, CalculateSharpeRatio([]float64{0.1}, 0))
	assert.InDelta(t, 2.0, CalculateSharpeRatio([]float64{0.1, 0.2, 0.3}, 0), 0.0001)
	// constant excess returns have zero deviation
	assert.Zero(t, CalculateSharpeRatio([]float64{0.1, 0.1, 0.1}, 0))
}

func TestCalculateSortinoRatio(t *testing.T) {
	t.Parallel()
	// no returns below the rate means no downside deviation
	assert.Zero(t, CalculateSortinoRatio([]float64{0.1, 0.2}, 0))
	got := CalculateSortinoRatio([]float64{0.2, -0.1, 0.3, -0.2}, 0)
	assert.InDelta(t, 0.4472, got, 0.0001)
}

func TestCalculateInformationRatio(t *testing.T) {
	t.Parallel()
	assert.Zero(t, CalculateInformationRatio([]float64{0.1}, []float64{0.1, 0.2}))
	// constant outperformance has zero tracking error
	assert.Zero(t, CalculateInformationRatio([]float64{0.2, 0.3}, []float64{0.1, 0.2}))
	got := CalculateInformationRatio([]float64{0.2, 0.1}, []float64{0.1, 0.05})
	assert.InDelta(t, 2.1213, got, 0.0001)
}

func TestCalculateCompoundAnnualGrowthRate(t *testing.T) {
	t.Parallel()
	assert.Zero(t, CalculateCompoundAnnualGrowthRate(0, 100, 365.25))
	assert.Zero(t, CalculateCompoundAnnualGrowthRate(100, 200, 0))
	assert.InDelta(t, 1.0, CalculateCompoundAnnualGrowthRate(100, 200, 365.25), 1e-9)
	// two years of doubling compounds to 41.42% annually
	assert.InDelta(t, math.Sqrt2-1, CalculateCompoundAnnualGrowthRate(100, 200, 730.5), 1e-9)
}

func TestCalculateCalmarRatio(t *testing.T) {
	t.Parallel()
	assert.Zero(t, CalculateCalmarRatio(0.3, 0))
	assert.InDelta(t, 2.0, CalculateCalmarRatio(0.3, -0.15), 1e-9)
}

func TestPercentile(t *testing.T) {
	t.Parallel()
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 1.0, Percentile(values, 0))
	assert.Equal(t, 5.0, Percentile(values, 1))
	assert.Equal(t, 3.0, Percentile(values, 0.5))
	assert.Equal(t, 2.5, Percentile([]float64{1, 2, 3, 4}, 0.5))
	assert.Zero(t, Percentile(nil, 0.5))
	// input order is preserved
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, values)
}

func TestRoundFloat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3.14, RoundFloat(3.14159, 2))
	assert.Equal(t, 1.235, RoundFloat(1.23456, 3))
}
