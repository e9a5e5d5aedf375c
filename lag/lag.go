// Package lag summarises consumer lag per topic from a consumer-group export,
// either delimited or whitespace aligned as printed by kafka-consumer-groups.
package lag

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	topicColumn = "TOPIC"
	lagColumn   = "LAG"
)

var (
	// ErrMissingColumns means the header has no TOPIC or no LAG column.
	ErrMissingColumns = errors.New("expected columns TOPIC and LAG")
	// ErrNoPartitions means no row matched the topic with a usable lag.
	ErrNoPartitions = errors.New("no partitions found")
)

// Summary is the lag of one topic across its partitions.
type Summary struct {
	Topic      string
	Partitions int
	Total      int64
	Average    float64
}

// AverageFile opens path and summarises it with Average.
func AverageFile(path, topic string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	return Average(f, topic)
}

// Average sums the LAG column over rows whose TOPIC equals topic. Rows with
// a lag that is not an integer are skipped.
func Average(r io.Reader, topic string) (Summary, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return Summary{}, err
	}

	var rows rowReader
	if delim, ok := detectDelimiter(first); ok {
		cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
		cr.Comma = delim
		cr.TrimLeadingSpace = true
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		rows = cr
	} else {
		rows = &fieldsReader{scanner: bufio.NewScanner(io.MultiReader(strings.NewReader(first), br))}
	}

	header, err := rows.Read()
	if err == io.EOF {
		return Summary{}, fmt.Errorf("%w: empty input", ErrMissingColumns)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("read header: %w", err)
	}
	ti, li := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case topicColumn:
			ti = i
		case lagColumn:
			li = i
		}
	}
	if ti < 0 || li < 0 {
		return Summary{}, fmt.Errorf("%w, found %q", ErrMissingColumns, header)
	}

	sum := Summary{Topic: topic}
	for {
		record, err := rows.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, err
		}
		if ti >= len(record) || li >= len(record) {
			continue
		}
		if strings.TrimSpace(record[ti]) != topic {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(record[li]), 10, 64)
		if err != nil {
			continue
		}
		sum.Partitions++
		sum.Total += v
	}

	if sum.Partitions == 0 {
		return Summary{}, fmt.Errorf("%w for topic: %s", ErrNoPartitions, topic)
	}
	sum.Average = float64(sum.Total) / float64(sum.Partitions)
	return sum, nil
}

type rowReader interface {
	Read() ([]string, error)
}

// detectDelimiter picks the most frequent delimiter of the header line.
// It reports false when fields are only separated by whitespace.
func detectDelimiter(header string) (rune, bool) {
	best, count := rune(0), 0
	for _, d := range []rune{',', '\t', ';', '|'} {
		if n := strings.Count(header, string(d)); n > count {
			best, count = d, n
		}
	}
	return best, count > 0
}

// fieldsReader splits lines on runs of whitespace, skipping blank lines.
type fieldsReader struct {
	scanner *bufio.Scanner
}

func (f *fieldsReader) Read() ([]string, error) {
	for f.scanner.Scan() {
		fields := strings.Fields(f.scanner.Text())
		if len(fields) == 0 {
			continue
		}
		return fields, nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
