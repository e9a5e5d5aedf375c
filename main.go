package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"

	"github.com/stojg/descent/dataset"
	"github.com/stojg/descent/linreg"
)

const imageFormat = "png"

// maxPathPoints bounds how many descent steps are kept for the cost surface.
const maxPathPoints = 200

type options struct {
	source     string
	data       string
	xColumn    string
	yColumn    string
	xMetric    string
	yMetric    string
	region     string
	days       float64
	alpha      float64
	iterations int
	theta0     float64
	theta1     float64
	logEvery   int
	out        string
	bucket     string
	noPlots    bool
}

func (o *options) validate() error {
	switch o.source {
	case "csv":
		if o.data == "" {
			return errors.New("-data is required for the csv source")
		}
	case "cloudwatch":
		if o.xMetric == "" || o.yMetric == "" {
			return errors.New("-x-metric and -y-metric are required for the cloudwatch source")
		}
		if o.days <= 0 {
			return fmt.Errorf("-days must be > 0 (got %v)", o.days)
		}
		xMetric, err := parseMetric(o.xMetric)
		if err != nil {
			return err
		}
		yMetric, err := parseMetric(o.yMetric)
		if err != nil {
			return err
		}
		// labels follow the metrics, -x and -y only name CSV columns
		o.xColumn, o.yColumn = xMetric.Name, yMetric.Name
	default:
		return fmt.Errorf("unknown source %q, expected csv or cloudwatch", o.source)
	}
	if o.logEvery <= 0 {
		o.logEvery = 100
	}
	if o.out == "" {
		o.out = "linear_regression"
	}
	return nil
}

func main() {
	opts := &options{}
	flag.StringVar(&opts.source, "source", "csv", "where observations come from: csv or cloudwatch")
	flag.StringVar(&opts.data, "data", "", "CSV file with a header row")
	flag.StringVar(&opts.xColumn, "x", dataset.DefaultXColumn, "CSV column of the independent variable")
	flag.StringVar(&opts.yColumn, "y", dataset.DefaultYColumn, "CSV column of the dependent variable")
	flag.StringVar(&opts.xMetric, "x-metric", "", "CloudWatch metric as namespace:name:dimension=value")
	flag.StringVar(&opts.yMetric, "y-metric", "", "CloudWatch metric as namespace:name:dimension=value")
	flag.StringVar(&opts.region, "region", "ap-southeast-2", "AWS region")
	flag.Float64Var(&opts.days, "days", 7, "days of CloudWatch data")
	flag.Float64Var(&opts.alpha, "alpha", 0.0001, "learning rate")
	flag.IntVar(&opts.iterations, "iterations", 1000, "number of gradient descent iterations")
	flag.Float64Var(&opts.theta0, "theta0", 0, "initial intercept")
	flag.Float64Var(&opts.theta1, "theta1", 0, "initial slope")
	flag.IntVar(&opts.logEvery, "log-every", 100, "log every N iterations")
	flag.StringVar(&opts.out, "out", "linear_regression", "prefix of the rendered plots")
	flag.StringVar(&opts.bucket, "bucket", "", "upload plots to this S3 bucket")
	flag.BoolVar(&opts.noPlots, "no-plots", false, "skip rendering plots")
	flag.Parse()

	if err := opts.validate(); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sess *session.Session
	if opts.source == "cloudwatch" || opts.bucket != "" {
		sess = session.Must(session.NewSession(&aws.Config{Region: aws.String(opts.region)}))
	}

	xs, ys, err := loadObservations(opts, sess)
	if err != nil {
		log.Fatalf("could not load observations: %v", err)
	}
	log.Printf("observations=%d", len(xs))

	res, path, err := train(ctx, opts, xs, ys)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	printSummary(os.Stdout, opts, xs, ys, res)

	if opts.noPlots {
		return
	}

	var store *plotStore
	if opts.bucket != "" {
		store = newPlotStore(sess, opts.bucket)
		if err := store.ensureBucket(); err != nil {
			log.Fatal(err)
		}
	}

	for _, a := range renderPlots(opts, xs, ys, res, path) {
		if err := os.WriteFile(a.name, a.data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write out plot %s: %v\n", a.name, err)
			continue
		}
		fmt.Printf("wrote %s\n", a.name)
		if store == nil {
			continue
		}
		link, err := store.upload(a.name, bytes.NewReader(a.data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not upload plot %s: %v\n", a.name, err)
			continue
		}
		fmt.Printf("%s: %s\n", a.name, link)
	}
}

func loadObservations(opts *options, sess *session.Session) ([]float64, []float64, error) {
	if opts.source == "csv" {
		return dataset.LoadFile(opts.data, opts.xColumn, opts.yColumn)
	}

	xMetric, err := parseMetric(opts.xMetric)
	if err != nil {
		return nil, nil, err
	}
	yMetric, err := parseMetric(opts.yMetric)
	if err != nil {
		return nil, nil, err
	}
	period := NewPeriod(time.Duration(opts.days * float64(Day)))
	return cloudwatchObservations(cloudwatch.New(sess), xMetric, yMetric, period)
}

// train runs gradient descent, logging progress and keeping a thinned copy of
// the descent path that always ends with the final parameters.
func train(ctx context.Context, opts *options, xs, ys []float64) (linreg.Result, []linreg.Params, error) {
	every := opts.iterations / maxPathPoints
	if every < 1 {
		every = 1
	}

	var path []linreg.Params
	cfg := linreg.Config{
		LearningRate: opts.alpha,
		Iterations:   opts.iterations,
		Initial:      linreg.Params{Theta0: opts.theta0, Theta1: opts.theta1},
		Observer: func(s linreg.Step) {
			if s.Iteration%opts.logEvery == 0 {
				log.Printf("iteration=%d loss=%.4f theta0=%.4f theta1=%.4f", s.Iteration, s.Loss, s.Params.Theta0, s.Params.Theta1)
			}
			if s.Iteration%every == 0 {
				path = append(path, s.Params)
			}
		},
	}

	res, err := linreg.TrainContext(ctx, xs, ys, cfg)
	if err != nil {
		return linreg.Result{}, nil, err
	}
	return res, append(path, res.Params), nil
}

func printSummary(w io.Writer, opts *options, xs, ys []float64, res linreg.Result) {
	reference := linreg.ClosedForm(xs, ys)

	fmt.Fprintf(w, "Final parameters:\n")
	fmt.Fprintf(w, "  theta_0 (y-intercept): %.2f\n", res.Theta0)
	fmt.Fprintf(w, "  theta_1 (gradient): %.2f\n", res.Theta1)
	fmt.Fprintf(w, "  Equation: %s = %.2f + %.2f * %s\n", opts.yColumn, res.Theta0, res.Theta1, opts.xColumn)
	if len(res.Losses) > 0 {
		fmt.Fprintf(w, "  Final loss: %.4f\n", res.Losses[len(res.Losses)-1])
	}
	fmt.Fprintf(w, "  R^2: %.4f\n", linreg.RSquared(xs, ys, res.Params))
	fmt.Fprintf(w, "Least squares: %s = %.2f + %.2f * %s (R^2: %.4f)\n",
		opts.yColumn, reference.Theta0, reference.Theta1, opts.xColumn, linreg.RSquared(xs, ys, reference))
	fmt.Fprintf(w, "Mean %s %.2f (stddev: %.2f), mean %s %.2f (stddev: %.2f)\n",
		opts.xColumn, stat.Mean(xs, nil), stat.StdDev(xs, nil),
		opts.yColumn, stat.Mean(ys, nil), stat.StdDev(ys, nil))
}

type artifact struct {
	name string
	data []byte
}

// renderPlots draws every plot it can. A plot that fails is reported and skipped.
func renderPlots(opts *options, xs, ys []float64, res linreg.Result, path []linreg.Params) []artifact {
	plots := []struct {
		suffix string
		title  string
		draw   func(p *plot.Plot) error
	}{
		{"fit", "Linear Regression: " + opts.yColumn + " vs " + opts.xColumn, func(p *plot.Plot) error {
			return plotFit(p, opts.xColumn, opts.yColumn, xs, ys, res.Params)
		}},
		{"loss", "Loss over Training Iterations", func(p *plot.Plot) error {
			return plotLoss(p, res.Losses)
		}},
		{"surface", "Cost Surface", func(p *plot.Plot) error {
			return plotCostSurface(p, xs, ys, path)
		}},
	}

	var out []artifact
	for _, pl := range plots {
		name := opts.out + "-" + pl.suffix + "." + imageFormat
		p, err := createPlot(pl.title)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create plot %s: %v\n", name, err)
			continue
		}
		if err := pl.draw(p); err != nil {
			fmt.Fprintf(os.Stderr, "could not plot %s: %v\n", name, err)
			continue
		}
		buf := &bytes.Buffer{}
		// w/h - A4 (1:1.414)
		if err := writePlot(buf, p, 1024, 1024*(1/1.414)); err != nil {
			fmt.Fprintf(os.Stderr, "Could not render plot %s: %v\n", name, err)
			continue
		}
		out = append(out, artifact{name: name, data: buf.Bytes()})
	}
	return out
}
