// Package linreg fits a univariate linear model with fixed-iteration batch
// gradient descent on mean squared error.
package linreg

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInput is returned, wrapped, when observations or hyperparameters
// cannot be trained on.
var ErrInvalidInput = errors.New("invalid input")

// Config captures the knobs of a single training run.
type Config struct {
	LearningRate float64
	Iterations   int
	// Initial is the starting point, the origin when left zero.
	Initial Params
	// Observer, if set, is called once per iteration before the update.
	Observer func(Step)
}

// Step describes one iteration: the parameters it started from and their loss.
type Step struct {
	Iteration int
	Params    Params
	Loss      float64
}

// Result is the trained model and the loss recorded at every iteration.
type Result struct {
	Params
	Losses []float64
}

// Train runs cfg.Iterations steps of batch gradient descent over (xs, ys).
//
// No guard is placed against divergence: a learning rate too large for the
// scale of the inputs produces growing, and eventually non-finite, losses and
// parameters, which are returned as is.
func Train(xs, ys []float64, cfg Config) (Result, error) {
	return TrainContext(context.Background(), xs, ys, cfg)
}

// TrainContext is Train with a cancellation check between iterations.
func TrainContext(ctx context.Context, xs, ys []float64, cfg Config) (Result, error) {
	if err := validate(xs, ys, cfg); err != nil {
		return Result{}, err
	}

	p := cfg.Initial
	losses := make([]float64, 0, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		loss, d0, d1 := costAndGradient(xs, ys, p)
		losses = append(losses, loss)
		if cfg.Observer != nil {
			cfg.Observer(Step{Iteration: i, Params: p, Loss: loss})
		}

		p.Theta0 -= cfg.LearningRate * d0
		p.Theta1 -= cfg.LearningRate * d1
	}

	return Result{Params: p, Losses: losses}, nil
}

func validate(xs, ys []float64, cfg Config) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: xs has %d values, ys has %d", ErrInvalidInput, len(xs), len(ys))
	}
	if len(xs) == 0 {
		return fmt.Errorf("%w: no observations", ErrInvalidInput)
	}
	// written this way so NaN is rejected too
	if !(cfg.LearningRate > 0) {
		return fmt.Errorf("%w: learning rate must be > 0 (got %v)", ErrInvalidInput, cfg.LearningRate)
	}
	if cfg.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be >= 0 (got %d)", ErrInvalidInput, cfg.Iterations)
	}
	return nil
}
