package extractors

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyReport is returned for report files with no content beyond whitespace.
var ErrEmptyReport = errors.New("report file is empty")

// Row is one CSV data line keyed by header name. Cells missing from ragged lines are absent.
type Row map[string]string

// Table is a decoded report file.
type Table struct {
	Header    []string
	Rows      []Row
	Delimiter rune
	// Skipped counts physical lines the CSV reader could not parse.
	Skipped int
}

var candidateDelimiters = []rune{',', ';', '\t'}

const delimiterSampleLines = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeCSV parses a header-first CSV document, auto-detecting the delimiter.
func DecodeCSV(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Table{}, ErrEmptyReport
	}

	delim := DetectDelimiter(data)
	reader := newReader(data, delim)

	header, err := reader.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := Table{Header: header, Delimiter: delim}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.Skipped++
				continue
			}
			return table, fmt.Errorf("read row: %w", err)
		}
		if blankRecord(record) {
			continue
		}
		row := make(Row, len(header))
		for i, name := range header {
			if i >= len(record) || name == "" {
				continue
			}
			row[name] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// DetectDelimiter picks the candidate delimiter that yields the most consistent
// multi-column field counts over the first lines, preferring more columns on ties.
// Comma wins when nothing splits the sample.
func DetectDelimiter(data []byte) rune {
	sample := sampleLines(data, delimiterSampleLines)

	best := ','
	bestDelta := -1
	bestAvg := 0.0
	for _, delim := range candidateDelimiters {
		counts := fieldCounts(sample, delim)
		if len(counts) == 0 {
			continue
		}
		total, delta := 0, 0
		for i, n := range counts {
			total += n
			if i > 0 {
				delta += abs(n - counts[i-1])
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg < 2 {
			continue
		}
		if bestDelta < 0 || delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg = delim, delta, avg
		}
	}
	return best
}

func newReader(data []byte, delim rune) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false
	return reader
}

func sampleLines(data []byte, limit int) []byte {
	var out bytes.Buffer
	lines := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		out.Write(line)
		out.WriteByte('\n')
		lines++
		if lines == limit {
			break
		}
	}
	return out.Bytes()
}

func fieldCounts(sample []byte, delim rune) []int {
	reader := newReader(sample, delim)
	counts := make([]int, 0, delimiterSampleLines)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		counts = append(counts, len(record))
	}
	return counts
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
