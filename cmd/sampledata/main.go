// Command sampledata writes a few days of example trade logs so the
// chatbot has something to answer questions about.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"stock-trading-chatbot/internal/loader"
	"stock-trading-chatbot/internal/types"
)

var universe = []struct {
	symbol string
	price  float64
}{
	{"AAPL", 178.50},
	{"MSFT", 412.20},
	{"GOOG", 141.80},
	{"TSLA", 242.60},
	{"0005.HK", 62.15},
	{"7203.T", 2890.00},
	{"005930.KS", 71400.00},
}

func main() {
	dir := flag.String("dir", "data", "directory to write log files into")
	days := flag.Int("days", 3, "number of days to generate, ending yesterday")
	rows := flag.Int("rows", 40, "approximate trades per day")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	end := time.Now().UTC().AddDate(0, 0, -1)
	for i := *days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		path := filepath.Join(*dir, loader.FileName(day))
		if err := writeDay(path, rng, *rows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
	}
}

func writeDay(path string, rng *rand.Rand, rows int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "symbol", "side", "quantity", "price", "fee", "status"}); err != nil {
		return err
	}

	// Trades arrive in timestamp order, like a real execution log.
	clock := 9*time.Hour + 30*time.Minute
	for i := 0; i < rows; i++ {
		clock += time.Duration(rng.Intn(500)+10) * time.Second
		inst := universe[rng.Intn(len(universe))]
		side := types.SideBuy
		if rng.Intn(2) == 1 {
			side = types.SideSell
		}
		qty := (rng.Intn(20) + 1) * 5
		drift := 1 + (rng.Float64()-0.5)*0.02
		price := decimal.NewFromFloat(inst.price * drift).Round(2)
		fee := price.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromFloat(0.0005)).Round(2)

		record := []string{
			fmt.Sprintf("%02d:%02d:%02d", int(clock.Hours()), int(clock.Minutes())%60, int(clock.Seconds())%60),
			inst.symbol,
			side,
			fmt.Sprintf("%d", qty),
			price.String(),
			fee.String(),
			"FILLED",
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
