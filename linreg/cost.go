package linreg

import (
	"gonum.org/v1/gonum/stat"
)

// Params are the intercept and slope of y = Theta0 + Theta1*x.
type Params struct {
	Theta0 float64
	Theta1 float64
}

// Predict returns the model's estimate for x.
func (p Params) Predict(x float64) float64 {
	return p.Theta0 + p.Theta1*x
}

// Cost is the mean squared error of p over the observations.
func Cost(xs, ys []float64, p Params) float64 {
	// cost = 1/m * sum((y - (theta0 + theta1*x))^2)
	s := 0.0
	for i := range xs {
		d := ys[i] - p.Predict(xs[i])
		s += d * d
	}
	return (1 / float64(len(xs))) * s
}

// Gradient returns the partial derivatives of Cost with respect to Theta0 and Theta1.
func Gradient(xs, ys []float64, p Params) (d0, d1 float64) {
	_, d0, d1 = costAndGradient(xs, ys, p)
	return d0, d1
}

// costAndGradient computes the loss and both partials from a single pass of residuals.
func costAndGradient(xs, ys []float64, p Params) (loss, d0, d1 float64) {
	// cost/dtheta0 = -2/m * sum(y - pred)
	// cost/dtheta1 = -2/m * sum((y - pred) * x)
	var sq, s0, s1 float64
	for i := range xs {
		d := ys[i] - p.Predict(xs[i])
		sq += d * d
		s0 += d
		s1 += d * xs[i]
	}
	m := float64(len(xs))
	return (1 / m) * sq, (-2 / m) * s0, (-2 / m) * s1
}

// ClosedForm returns the ordinary least squares fit, useful as a reference for
// what gradient descent should approach.
func ClosedForm(xs, ys []float64) Params {
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Params{Theta0: alpha, Theta1: beta}
}

// Sum Square Errors
func computeSSE(xs, ys []float64, p Params) float64 {
	s := 0.0
	for i := range xs {
		d := ys[i] - p.Predict(xs[i])
		s += d * d
	}
	return s
}

// Sum Square of Total
func computeSST(ys []float64) float64 {
	mean := stat.Mean(ys, nil)
	s := 0.0
	for _, y := range ys {
		d := y - mean
		s += d * d
	}
	return s
}

// RSquared is the coefficient of determination of p. It is NaN when ys has no variance.
func RSquared(xs, ys []float64, p Params) float64 {
	return 1 - computeSSE(xs, ys, p)/computeSST(ys)
}
