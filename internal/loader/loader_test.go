package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-trading-chatbot/internal/types"
)

var day1 = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
var day2 = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

func writeLog(t *testing.T, dir string, date time.Time, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName(date))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesRows(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day1, `timestamp,symbol,side,quantity,price,fee,status
09:30:00,AAPL,BUY,100,150.25,0.75,FILLED
09:31:12.500000,005930.ks,sell,50,71400,,FILLED
`)

	l := New(dir)
	logs, err := l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	dl := logs[day1]
	require.Len(t, dl.Rows, 2)
	assert.Equal(t, 0, dl.MalformedRows)

	first := dl.Rows[0]
	assert.Equal(t, "AAPL", first.Symbol)
	assert.Equal(t, types.SideBuy, first.Side)
	assert.Equal(t, int64(100), first.Quantity)
	assert.Equal(t, "150.25", first.Price.String())
	assert.Equal(t, "0.75", first.Fee.String())
	assert.Equal(t, day1.Add(9*time.Hour+30*time.Minute), first.Timestamp)

	// Symbols and sides are normalized to upper case.
	second := dl.Rows[1]
	assert.Equal(t, "005930.KS", second.Symbol)
	assert.Equal(t, types.SideSell, second.Side)
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day1, `timestamp,symbol,side,quantity,price
09:30:00,AAPL,BUY,100,150.25
not-a-time,AAPL,BUY,10,5
09:32:00,AAPL,HOLD,10,5
09:33:00,AAPL,SELL,-3,5
09:34:00,AAPL,SELL,10,abc
09:35:00,MSFT,SELL,10,412.20
`)

	l := New(dir)
	logs, err := l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)

	dl := logs[day1]
	assert.Len(t, dl.Rows, 2)
	assert.Equal(t, 4, dl.MalformedRows)
	assert.Equal(t, 4, l.Stats().MalformedRows)
}

func TestLoadAlternateHeaders(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day1, `Timestamp,Instrument,Side,Qty,Price
09:30:00,TSLA,BUY,5,242.60
`)

	l := New(dir)
	logs, err := l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)
	require.Len(t, logs[day1].Rows, 1)
	assert.Equal(t, "TSLA", logs[day1].Rows[0].Symbol)
}

func TestLoadMissingHeaderColumn(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day1, "timestamp,symbol,quantity,price\n09:30:00,AAPL,10,5\n")

	l := New(dir)
	_, err := l.Load(context.Background(), []time.Time{day1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side")
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day1, "timestamp,symbol,side,quantity,price\n09:30:00,AAPL,BUY,10,5\n")

	l := New(dir)

	// One present, one absent: present day loads, absent day is omitted.
	logs, err := l.Load(context.Background(), []time.Time{day1, day2})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Contains(t, logs, day1)

	// All absent: MissingLogError naming the dates.
	_, err = l.Load(context.Background(), []time.Time{day2})
	var missing *MissingLogError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []time.Time{day2}, missing.Dates)
	assert.Equal(t, 2, l.Stats().MissingFiles)
}

func TestLoadCacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, day1, "timestamp,symbol,side,quantity,price\n09:30:00,AAPL,BUY,10,5\n")

	l := New(dir)
	logs, err := l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)
	require.Len(t, logs[day1].Rows, 1)

	// Unchanged modtime serves the cached parse.
	logs, err = l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Stats().FilesLoaded)

	// Rewrite with a newer modtime: the next load reparses.
	writeLog(t, dir, day1, "timestamp,symbol,side,quantity,price\n09:30:00,AAPL,BUY,10,5\n09:31:00,AAPL,BUY,20,5\n")
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Hour)))

	logs, err = l.Load(context.Background(), []time.Time{day1})
	require.NoError(t, err)
	assert.Len(t, logs[day1].Rows, 2)
	assert.Equal(t, 2, l.Stats().FilesLoaded)
}

func TestAvailableDates(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, day2, "timestamp,symbol,side,quantity,price\n")
	writeLog(t, dir, day1, "timestamp,symbol,side,quantity,price\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	l := New(dir)
	dates, err := l.AvailableDates()
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day1, day2}, dates)

	empty := New(filepath.Join(dir, "does-not-exist"))
	dates, err = empty.AvailableDates()
	require.NoError(t, err)
	assert.Empty(t, dates)
}
