// Package loader reads per-day trade CSV logs into memory. Files are
// named YYYY-MM-DD.csv inside the data directory; a header row is
// required and unknown extra columns are ignored. Loaded days are
// cached and invalidated when the file's modification time changes.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-trading-chatbot/internal/logger"
	"stock-trading-chatbot/internal/markets"
	"stock-trading-chatbot/internal/trace"
	"stock-trading-chatbot/internal/types"
)

// MissingLogError reports that no log file exists for any of the
// requested dates. Not fatal; downstream reports "no data".
type MissingLogError struct {
	Dates []time.Time
}

func (e *MissingLogError) Error() string {
	if len(e.Dates) == 1 {
		return fmt.Sprintf("no log file for %s", e.Dates[0].Format("2006-01-02"))
	}
	return fmt.Sprintf("no log files for any of %d requested dates", len(e.Dates))
}

// MalformedRowError reports a single row that failed type coercion.
// Rows carrying it are skipped and counted, never aborting the file.
type MalformedRowError struct {
	File   string
	Line   int
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// Stats holds loader diagnostics, retrievable but not user-facing.
type Stats struct {
	FilesLoaded   int
	MissingFiles  int
	MalformedRows int
}

type cacheEntry struct {
	modTime time.Time
	log     *types.DailyLog
}

// Loader owns the DailyLog cache for one session. Not safe for
// concurrent use; the engine serializes questions.
type Loader struct {
	dataDir string
	cache   map[string]cacheEntry
	stats   Stats
}

func New(dataDir string) *Loader {
	return &Loader{
		dataDir: dataDir,
		cache:   make(map[string]cacheEntry),
	}
}

// FileName returns the log filename convention for a date.
func FileName(date time.Time) string {
	return date.Format("2006-01-02") + ".csv"
}

// Load fetches the DailyLog for each requested date. Dates without a
// file are omitted from the result; when no requested date has a
// file, a MissingLogError listing them is returned instead.
func (l *Loader) Load(ctx context.Context, dates []time.Time) (map[time.Time]*types.DailyLog, error) {
	ctx, span := trace.StartSpan(ctx, "loader.Load")
	defer span.End()

	out := make(map[time.Time]*types.DailyLog, len(dates))
	var missing []time.Time
	for _, d := range dates {
		day := midnight(d)
		dl, err := l.loadDay(ctx, day)
		if err != nil {
			if os.IsNotExist(err) {
				l.stats.MissingFiles++
				missing = append(missing, day)
				continue
			}
			return nil, err
		}
		out[day] = dl
	}
	if len(out) == 0 {
		return nil, &MissingLogError{Dates: missing}
	}
	return out, nil
}

func (l *Loader) loadDay(ctx context.Context, day time.Time) (*types.DailyLog, error) {
	key := day.Format("2006-01-02")
	path := filepath.Join(l.dataDir, FileName(day))

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if entry, ok := l.cache[key]; ok && entry.modTime.Equal(info.ModTime()) {
		return entry.log, nil
	}

	dl, err := l.parseFile(ctx, path, day)
	if err != nil {
		return nil, err
	}
	l.cache[key] = cacheEntry{modTime: info.ModTime(), log: dl}
	l.stats.FilesLoaded++
	l.stats.MalformedRows += dl.MalformedRows
	logger.Info(ctx, "Loaded daily log",
		"file", path,
		"rows", len(dl.Rows),
		"malformed", dl.MalformedRows,
	)
	return dl, nil
}

func (l *Loader) parseFile(ctx context.Context, path string, day time.Time) (*types.DailyLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dl := &types.DailyLog{Date: day, File: filepath.Base(path)}
	line := 1 // header consumed
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			dl.MalformedRows++
			logger.Debug(ctx, "Skipping unreadable row", "file", path, "line", line, "error", err)
			continue
		}
		row, rerr := coerceRow(record, cols, dl.File, line, day)
		if rerr != nil {
			dl.MalformedRows++
			logger.Debug(ctx, "Skipping malformed row", "error", rerr)
			continue
		}
		dl.Rows = append(dl.Rows, row)
	}
	return dl, nil
}

type columnMap struct {
	timestamp, symbol, side, quantity, price int
	fee, status                              int // -1 when absent
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{timestamp: -1, symbol: -1, side: -1, quantity: -1, price: -1, fee: -1, status: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp":
			cols.timestamp = i
		case "symbol", "instrument":
			cols.symbol = i
		case "side":
			cols.side = i
		case "quantity", "qty":
			cols.quantity = i
		case "price":
			cols.price = i
		case "fee":
			cols.fee = i
		case "status":
			cols.status = i
		}
	}
	for name, idx := range map[string]int{
		"timestamp": cols.timestamp,
		"symbol":    cols.symbol,
		"side":      cols.side,
		"quantity":  cols.quantity,
		"price":     cols.price,
	} {
		if idx < 0 {
			return cols, fmt.Errorf("missing required column %q", name)
		}
	}
	return cols, nil
}

var timeLayouts = []string{"15:04:05.000000", "15:04:05", "15:04"}

func coerceRow(record []string, cols columnMap, file string, line int, day time.Time) (types.LogRow, error) {
	malformed := func(reason string) (types.LogRow, error) {
		return types.LogRow{}, &MalformedRowError{File: file, Line: line, Reason: reason}
	}
	need := cols.price
	if cols.quantity > need {
		need = cols.quantity
	}
	if cols.side > need {
		need = cols.side
	}
	if cols.symbol > need {
		need = cols.symbol
	}
	if cols.timestamp > need {
		need = cols.timestamp
	}
	if len(record) <= need {
		return malformed("too few fields")
	}

	ts, err := parseTimeOfDay(record[cols.timestamp], day)
	if err != nil {
		return malformed("bad timestamp " + record[cols.timestamp])
	}

	symbol := markets.Normalize(record[cols.symbol])
	if symbol == "" {
		return malformed("empty symbol")
	}

	side := strings.ToUpper(strings.TrimSpace(record[cols.side]))
	if side != types.SideBuy && side != types.SideSell {
		return malformed("bad side " + record[cols.side])
	}

	qty, err := strconv.ParseInt(strings.TrimSpace(record[cols.quantity]), 10, 64)
	if err != nil || qty < 0 {
		return malformed("bad quantity " + record[cols.quantity])
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[cols.price]))
	if err != nil || price.IsNegative() {
		return malformed("bad price " + record[cols.price])
	}

	row := types.LogRow{
		File:      file,
		Line:      line,
		Timestamp: ts,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price,
	}
	if cols.fee >= 0 && cols.fee < len(record) && strings.TrimSpace(record[cols.fee]) != "" {
		fee, err := decimal.NewFromString(strings.TrimSpace(record[cols.fee]))
		if err != nil {
			return malformed("bad fee " + record[cols.fee])
		}
		row.Fee = fee
	}
	if cols.status >= 0 && cols.status < len(record) {
		row.Status = strings.TrimSpace(record[cols.status])
	}
	return row, nil
}

func parseTimeOfDay(s string, day time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

var fileDatePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.csv$`)

// AvailableDates scans the data directory for log files and returns
// their dates in ascending order.
func (l *Loader) AvailableDates() ([]time.Time, error) {
	entries, err := os.ReadDir(l.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dates []time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileDatePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		d, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Stats returns accumulated diagnostics for this loader.
func (l *Loader) Stats() Stats { return l.stats }

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
