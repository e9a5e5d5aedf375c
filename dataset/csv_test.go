package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const salary = `YearsExperience,Salary
1.1,39343.00
1.3, 46205.00
2.0,43525.00
`

func TestLoad(t *testing.T) {
	xs, ys, err := Load(strings.NewReader(salary), DefaultXColumn, DefaultYColumn)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantX := []float64{1.1, 1.3, 2.0}
	wantY := []float64{39343, 46205, 43525}
	if len(xs) != len(wantX) || len(ys) != len(wantY) {
		t.Fatalf("expected %d rows, got %d/%d", len(wantX), len(xs), len(ys))
	}
	for i := range wantX {
		if xs[i] != wantX[i] || ys[i] != wantY[i] {
			t.Fatalf("row %d: got (%v, %v), want (%v, %v)", i, xs[i], ys[i], wantX[i], wantY[i])
		}
	}
}

func TestLoadColumnOrderAndExtras(t *testing.T) {
	in := "id, Salary ,YearsExperience\n7,10,1\n8,20,2\n"
	xs, ys, err := Load(strings.NewReader(in), DefaultXColumn, DefaultYColumn)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if xs[1] != 2 || ys[1] != 20 {
		t.Fatalf("columns mapped incorrectly: xs=%v ys=%v", xs, ys)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty file"},
		{"missing column", "YearsExperience,Pay\n1,2\n", `"Salary"`},
		{"bad number", "YearsExperience,Salary\n1,2\nabc,3\n", "line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(strings.NewReader(tt.input), DefaultXColumn, DefaultYColumn)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	_, _, err := Load(strings.NewReader("a,b\n"), DefaultXColumn, DefaultYColumn)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salary.csv")
	if err := os.WriteFile(path, []byte(salary), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	xs, _, err := LoadFile(path, DefaultXColumn, DefaultYColumn)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(xs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(xs))
	}
	if _, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), "a", "b"); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
