package math

import (
	"math"
	"sort"
)

// ArithmeticAverage is the basic form of calculating an average.
// Divide the sum of all values by the length of values
func ArithmeticAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumOfValues float64
	for x := range values {
		sumOfValues += values[x]
	}
	return sumOfValues / float64(len(values))
}

// PopulationStandardDeviation calculates standard deviation using population based calculation
func PopulationStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := ArithmeticAverage(values)
	diffs := make([]float64, len(values))
	for x := range values {
		diffs[x] = math.Pow(values[x]-avg, 2)
	}
	return math.Sqrt(ArithmeticAverage(diffs))
}

// SampleStandardDeviation standard deviation is a statistic that
// measures the dispersion of a dataset relative to its mean and
// is calculated as the square root of the variance
func SampleStandardDeviation(vals []float64) float64 {
	if len(vals) <= 1 {
		return 0
	}
	mean := ArithmeticAverage(vals)
	var combined float64
	for i := range vals {
		combined += math.Pow(vals[i]-mean, 2)
	}
	avg := combined / (float64(len(vals)) - 1)
	return math.Sqrt(avg)
}

// DownsideDeviation measures dispersion of only the values falling below
// the minimum acceptable return. Used as the denominator of the Sortino ratio
func DownsideDeviation(values []float64, minimumAcceptableReturn float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var totalNegativeResultsSquared float64
	for x := range values {
		if values[x]-minimumAcceptableReturn < 0 {
			totalNegativeResultsSquared += math.Pow(values[x]-minimumAcceptableReturn, 2)
		}
	}
	return math.Sqrt(totalNegativeResultsSquared / float64(len(values)))
}

// CalculateSharpeRatio returns the risk-adjusted return versus a risk-free rate.
// Both the returns and the rate must share the same period, annualise afterwards
func CalculateSharpeRatio(movementPerCandle []float64, riskFreeRate float64) float64 {
	if len(movementPerCandle) <= 1 {
		return 0
	}
	excessReturns := make([]float64, len(movementPerCandle))
	for i := range movementPerCandle {
		excessReturns[i] = movementPerCandle[i] - riskFreeRate
	}
	standardDeviation := SampleStandardDeviation(excessReturns)
	if standardDeviation == 0 {
		return 0
	}
	return ArithmeticAverage(excessReturns) / standardDeviation
}

// CalculateSortinoRatio returns the excess return versus only the downside
// deviation of returns below the risk-free rate
func CalculateSortinoRatio(movementPerCandle []float64, riskFreeRate float64) float64 {
	if len(movementPerCandle) == 0 {
		return 0
	}
	downside := DownsideDeviation(movementPerCandle, riskFreeRate)
	if downside == 0 {
		return 0
	}
	return (ArithmeticAverage(movementPerCandle) - riskFreeRate) / downside
}

// CalculateInformationRatio The information ratio (IR) is a measurement of portfolio returns beyond the returns of a benchmark,
// usually an index, compared to the volatility of those returns
func CalculateInformationRatio(values, benchmarkRates []float64) float64 {
	if len(values) == 0 || len(values) != len(benchmarkRates) {
		return 0
	}
	diffs := make([]float64, len(values))
	for i := range values {
		diffs[i] = values[i] - benchmarkRates[i]
	}
	stdDev := SampleStandardDeviation(diffs)
	if stdDev == 0 {
		return 0
	}
	return ArithmeticAverage(diffs) / stdDev
}

// CalculateCompoundAnnualGrowthRate Calculates CAGR.
// Open and close values are portfolio equity, the period is expressed in days
// using the average Gregorian year so leap years do not skew multi-year runs
func CalculateCompoundAnnualGrowthRate(openValue, closeValue, elapsedDays float64) float64 {
	if openValue <= 0 || closeValue <= 0 || elapsedDays <= 0 {
		return 0
	}
	return math.Pow(closeValue/openValue, 365.25/elapsedDays) - 1
}

// CalculateCalmarRatio is a function of the average compounded annual rate of
// return versus its maximum drawdown
func CalculateCalmarRatio(cagr, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return cagr / math.Abs(maxDrawdown)
}

// Percentile returns the value at rank p (0-1 inclusive) of values using
// linear interpolation between closest ranks. The input is not modified
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// RoundFloat rounds your floating point number to the desired decimal place
func RoundFloat(x float64, prec int) float64 {
	pow := math.Pow(10, float64(prec))
	return math.Round(x*pow) / pow
}
