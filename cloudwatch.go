package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

const Day = time.Hour * 24

func NewPeriod(span time.Duration) *Period {
	return &Period{
		span:   span,
		now:    time.Now(),
		Period: 60,
	}
}

// Period splits span into day long windows ending at the time it was created.
// Windows are half-open, CloudWatch treats StartTime as inclusive and EndTime
// as exclusive, so adjacent days share a boundary and no datapoint.
type Period struct {
	span   time.Duration
	now    time.Time
	Period int64
}

func (period *Period) Days() float64 {
	return float64(period.span) / float64(Day)
}

func (period *Period) Start(days float64) time.Time {
	return period.now.Add(time.Duration(float64(Day) * -days))
}

func (period *Period) End(days float64) time.Time {
	days = math.Max(0, days-1)
	return period.now.Add(time.Duration(float64(Day) * -days))
}

// metric identifies a single CloudWatch series, written as
// "namespace:name:dimension=value".
type metric struct {
	Namespace string
	Name      string
	Dimension string
	Value     string
}

func parseMetric(s string) (metric, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return metric{}, fmt.Errorf("metric %q: expected namespace:name:dimension=value", s)
	}
	dim := strings.SplitN(parts[2], "=", 2)
	if len(dim) != 2 || dim[0] == "" || dim[1] == "" {
		return metric{}, fmt.Errorf("metric %q: expected dimension=value", s)
	}
	if parts[0] == "" || parts[1] == "" {
		return metric{}, fmt.Errorf("metric %q: namespace and name must be set", s)
	}
	return metric{Namespace: parts[0], Name: parts[1], Dimension: dim[0], Value: dim[1]}, nil
}

func (m metric) String() string {
	return fmt.Sprintf("%s:%s:%s=%s", m.Namespace, m.Name, m.Dimension, m.Value)
}

// getMetric fetches the per minute Sum of m over period, one day per request,
// keyed by the unix time of the minute.
func getMetric(client cloudwatchiface.CloudWatchAPI, m metric, period *Period) (map[int64]float64, error) {
	result := make(map[int64]float64, 0)

	for i := period.Days(); i > 0; i-- {
		res, err := client.GetMetricStatistics(&cloudwatch.GetMetricStatisticsInput{
			Dimensions: []*cloudwatch.Dimension{
				{
					Name:  aws.String(m.Dimension),
					Value: aws.String(m.Value),
				},
			},
			Namespace:  aws.String(m.Namespace),
			MetricName: aws.String(m.Name),
			StartTime:  aws.Time(period.Start(i)),
			EndTime:    aws.Time(period.End(i)),
			Period:     aws.Int64(period.Period),
			Statistics: []*string{aws.String("Sum")},
		})
		if err != nil {
			return nil, fmt.Errorf("could not get %s: %w", m, err)
		}

		sumMetric(res.Datapoints, result)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("no datapoints were found for '%s'", m)
	}

	return result, nil
}

func sumMetric(in []*cloudwatch.Datapoint, result map[int64]float64) {
	for _, point := range in {
		if point.Sum == nil || point.Timestamp == nil {
			continue
		}
		// several points in the same minute add up (Sum metric)
		result[minuteOf(*point.Timestamp)] += *point.Sum
	}
}

func minuteOf(t time.Time) int64 {
	return t.Truncate(time.Minute).Unix()
}

// pairMetrics joins two series on their minute, oldest first. Minutes missing
// from either side are dropped.
func pairMetrics(x, y map[int64]float64) (xs, ys []float64) {
	var keys []int64
	for minute := range x {
		if _, found := y[minute]; found {
			keys = append(keys, minute)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, minute := range keys {
		xs = append(xs, x[minute])
		ys = append(ys, y[minute])
	}
	return xs, ys
}

// cloudwatchObservations loads xMetric and yMetric and pairs them per minute.
func cloudwatchObservations(client cloudwatchiface.CloudWatchAPI, xMetric, yMetric metric, period *Period) ([]float64, []float64, error) {
	x, err := getMetric(client, xMetric, period)
	if err != nil {
		return nil, nil, err
	}
	y, err := getMetric(client, yMetric, period)
	if err != nil {
		return nil, nil, err
	}
	xs, ys := pairMetrics(x, y)
	if len(xs) == 0 {
		return nil, nil, fmt.Errorf("%s and %s share no minutes", xMetric, yMetric)
	}
	return xs, ys, nil
}
