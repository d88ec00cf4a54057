package skew

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewValues is returned when fewer than two values are available.
	ErrTooFewValues = errors.New("box-cox needs at least two values")
	// ErrNonPositive is returned when the input contains values <= 0.
	ErrNonPositive = errors.New("box-cox input must be strictly positive")
	// ErrConstant is returned when every input value is identical.
	ErrConstant = errors.New("box-cox input must not be constant")
	// ErrNoConvergence is returned when the lambda search fails or yields non-finite output.
	ErrNoConvergence = errors.New("box-cox lambda search did not converge")
)

// lambdaBound limits the search interval; beyond it x^lambda overflows for ordinary data.
const lambdaBound = 20

// Skewness returns the bias-adjusted sample skewness (G1) of the non-NaN values in x.
// It returns NaN when fewer than three values are present and 0 for constant values.
func Skewness(x []float64) float64 {
	vals := present(x)
	if len(vals) < 3 {
		return math.NaN()
	}
	if floats.Min(vals) == floats.Max(vals) {
		return 0
	}
	return stat.Skew(vals, nil)
}

// BoxCox applies the Box-Cox transform with parameter lambda to strictly positive x.
// lambda == 0 is the natural log.
func BoxCox(x []float64, lambda float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = boxCoxValue(v, lambda)
	}
	return out
}

func boxCoxValue(v, lambda float64) float64 {
	if lambda == 0 {
		return math.Log(v)
	}
	return math.Expm1(lambda*math.Log(v)) / lambda
}

// LogLikelihood is the Box-Cox profile log-likelihood of lambda for strictly positive x
// under a normality assumption on the transformed values.
func LogLikelihood(x []float64, lambda float64) float64 {
	n := float64(len(x))
	var sumLog float64
	for _, v := range x {
		sumLog += math.Log(v)
	}
	_, variance := stat.PopMeanVariance(BoxCox(x, lambda), nil)
	return (lambda-1)*sumLog - n/2*math.Log(variance)
}

// Fit finds the lambda that maximizes LogLikelihood and returns the transformed values.
func Fit(x []float64) ([]float64, float64, error) {
	if len(x) < 2 {
		return nil, 0, ErrTooFewValues
	}
	for _, v := range x {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, 0, ErrNonPositive
		}
	}
	if floats.Min(x) == floats.Max(x) {
		return nil, 0, ErrConstant
	}
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			lambda := p[0]
			if math.Abs(lambda) > lambdaBound {
				return math.MaxFloat64
			}
			llf := LogLikelihood(x, lambda)
			if math.IsNaN(llf) || math.IsInf(llf, 0) {
				return math.MaxFloat64
			}
			return -llf
		},
	}
	res, err := optimize.Minimize(problem, []float64{0}, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	lambda := res.X[0]
	if math.IsNaN(lambda) || math.Abs(lambda) > lambdaBound {
		return nil, 0, fmt.Errorf("%w: lambda %v", ErrNoConvergence, lambda)
	}
	out := BoxCox(x, lambda)
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, fmt.Errorf("%w: non-finite output at lambda %.4f", ErrNoConvergence, lambda)
		}
	}
	return out, lambda, nil
}

func present(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
