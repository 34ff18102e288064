package marketdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// CSVProvider reads daily bars from a Yahoo-style CSV file with columns
// Date, Open, High, Low, Close, optionally Adj Close, and Volume.
type CSVProvider struct {
	path     string
	adjusted bool
}

// NewCSVProvider creates a provider reading path. With adjusted set and an
// Adj Close column present, OHLC are scaled by adjclose/close.
func NewCSVProvider(path string, adjusted bool) *CSVProvider {
	return &CSVProvider{path: path, adjusted: adjusted}
}

// Name implements Provider.
func (p *CSVProvider) Name() string {
	return "csv"
}

// DailyBars implements Provider. The symbol is not checked against the file.
func (p *CSVProvider) DailyBars(ctx context.Context, _ string, start, end time.Time) ([]Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	bars, err := ReadCSV(file, p.adjusted)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	inRange := bars[:0]
	for _, b := range bars {
		if !b.Date.Before(start) && b.Date.Before(end) {
			inRange = append(inRange, b)
		}
	}
	return inRange, nil
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

type csvColumns struct {
	date, open, high, low, close, adjClose, volume int
}

// ReadCSV parses bars from r. The header row is required; empty, NA, NaN and
// null cells become null fields.
func ReadCSV(r io.Reader, adjusted bool) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := csvColumns{-1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.Trim(h, "\""))) {
		case "date", "datetime", "ds":
			cols.date = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "adj close", "adj_close", "adjclose":
			cols.adjClose = i
		case "volume":
			cols.volume = i
		}
	}
	if cols.date == -1 || cols.close == -1 {
		return nil, errors.New("csv must have Date and Close columns")
	}

	var bars []Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		date, err := parseDate(cell(record, cols.date))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		bar := Bar{
			Date:   date,
			Open:   parseFloat(cell(record, cols.open)),
			High:   parseFloat(cell(record, cols.high)),
			Low:    parseFloat(cell(record, cols.low)),
			Close:  parseFloat(cell(record, cols.close)),
			Volume: parseInt(cell(record, cols.volume)),
		}

		if adjusted && cols.adjClose >= 0 {
			adj := parseFloat(cell(record, cols.adjClose))
			if adj.Valid && bar.Close.Valid && bar.Close.Float64 != 0 {
				ratio := adj.Float64 / bar.Close.Float64
				bar.Open = scale(bar.Open, ratio)
				bar.High = scale(bar.High, ratio)
				bar.Low = scale(bar.Low, ratio)
				bar.Close = adj
			}
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// WriteCSV writes the table with NA rows as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 6)
	for _, b := range t.Bars {
		record[0] = b.Date.Format("2006-01-02")
		for i, f := range []null.Float{b.Open, b.High, b.Low, b.Close} {
			record[i+1] = ""
			if f.Valid {
				record[i+1] = strconv.FormatFloat(f.Float64, 'f', -1, 64)
			}
		}
		record[5] = ""
		if b.Volume.Valid {
			record[5] = strconv.FormatInt(b.Volume.Int64, 10)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", record[0], err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(record[idx], "\""))
}

func isNAToken(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "null":
		return true
	}
	return false
}

func parseFloat(s string) null.Float {
	if isNAToken(s) {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func parseInt(s string) null.Int {
	if isNAToken(s) {
		return null.Int{}
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return null.IntFrom(v)
	}
	// Some exports write volume as a float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return null.IntFrom(int64(f))
	}
	return null.Int{}
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
