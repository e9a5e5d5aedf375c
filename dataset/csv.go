// Package dataset reads paired observations out of tabular files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Columns of the salary dataset.
const (
	DefaultXColumn = "YearsExperience"
	DefaultYColumn = "Salary"
)

// ErrMissingColumn is returned when the header lacks a requested column.
var ErrMissingColumn = errors.New("missing column")

// LoadFile opens path and reads it with Load.
func LoadFile(path, xColumn, yColumn string) (xs, ys []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	xs, ys, err = Load(f, xColumn, yColumn)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return xs, ys, nil
}

// Load reads a CSV with a header row and returns the values of the two named
// columns, paired by row.
func Load(r io.Reader, xColumn, yColumn string) (xs, ys []float64, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	xi, yi := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case xColumn:
			xi = i
		case yColumn:
			yi = i
		}
	}
	if xi < 0 {
		return nil, nil, fmt.Errorf("%w %q", ErrMissingColumn, xColumn)
	}
	if yi < 0 {
		return nil, nil, fmt.Errorf("%w %q", ErrMissingColumn, yColumn)
	}

	lineNo := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNo++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		x, err := parseFloat(record[xi])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %s: %w", lineNo, xColumn, err)
		}
		y, err := parseFloat(record[yi])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %s: %w", lineNo, yColumn, err)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
