package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	mat_ "github.com/aouyang1/go-quantreg/mat"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoHeader      = errors.New("no header row")
	ErrUnknownTarget = errors.New("target column not found in header")
	ErrNoRows        = errors.New("no data rows")
)

// LoadCSV reads a table with a header row of column names and numeric rows. The target column
// becomes y and all other columns, in header order, become the features.
func LoadCSV(r io.Reader, target string) (*mat.Dense, []float64, []string, error) {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true

	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to read header, %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	targetIdx := slices.Index(header, target)
	if targetIdx < 0 {
		return nil, nil, nil, fmt.Errorf("%q, %w", target, ErrUnknownTarget)
	}
	features := slices.Delete(slices.Clone(header), targetIdx, targetIdx+1)

	var rows [][]float64
	var y []float64
	for line := 2; ; line++ {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("unable to read line %d, %w", line, err)
		}

		row := make([]float64, 0, len(features))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("line %d column %q, %w", line, header[i], err)
			}
			if i == targetIdx {
				y = append(y, v)
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil, nil, ErrNoRows
	}

	x, err := mat_.NewDenseFromArray(rows)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unable to build feature matrix, %w", err)
	}
	return x, y, features, nil
}
