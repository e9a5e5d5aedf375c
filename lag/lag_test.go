package lag

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const delimited = `GROUP,TOPIC,PARTITION,CURRENT-OFFSET,LOG-END-OFFSET,LAG
g1, orders,0,10,15,5
g1,orders,1,10,20,10
g1,payments,0,0,100,100
g1,orders,2,10,10,-
g1,orders,3,0,3,3
`

const aligned = `
GROUP           TOPIC           PARTITION  CURRENT-OFFSET  LOG-END-OFFSET  LAG             CONSUMER-ID
g1              orders          0          10              15              5               consumer-1
g1              orders          1          10              20              10              consumer-1

g1              payments        0          0               100             100             consumer-2
`

func TestAverage(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		topic      string
		partitions int
		total      int64
		average    float64
	}{
		{"comma", delimited, "orders", 3, 18, 6},
		{"semicolon", "TOPIC;LAG\na;1\na;2\n", "a", 2, 3, 1.5},
		{"tab", "TOPIC\tLAG\na\t4\n", "a", 1, 4, 4},
		{"whitespace", aligned, "orders", 2, 15, 7.5},
		{"whitespace other topic", aligned, "payments", 1, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Average(strings.NewReader(tt.input), tt.topic)
			if err != nil {
				t.Fatalf("Average: %v", err)
			}
			if s.Topic != tt.topic || s.Partitions != tt.partitions || s.Total != tt.total {
				t.Fatalf("unexpected summary %+v", s)
			}
			if math.Abs(s.Average-tt.average) > 1e-9 {
				t.Fatalf("average %v, want %v", s.Average, tt.average)
			}
		})
	}
}

func TestAverageErrors(t *testing.T) {
	if _, err := Average(strings.NewReader("NAME,VALUE\na,1\n"), "a"); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	if _, err := Average(strings.NewReader(""), "a"); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns for empty input, got %v", err)
	}
	if _, err := Average(strings.NewReader(delimited), "missing"); !errors.Is(err, ErrNoPartitions) {
		t.Fatalf("expected ErrNoPartitions, got %v", err)
	}
}

func TestAverageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	if err := os.WriteFile(path, []byte(delimited), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := AverageFile(path, "payments")
	if err != nil {
		t.Fatalf("AverageFile: %v", err)
	}
	if s.Total != 100 {
		t.Fatalf("expected total 100, got %d", s.Total)
	}
	if _, err := AverageFile(filepath.Join(t.TempDir(), "nope.csv"), "a"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
