package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/quantmex/mxlib/bootstrap"
	"github.com/quantmex/mxlib/timeseries"
)

// BootstrapInput defines the JSON input schema: one batch of instrument rows,
// each tagged with its valuation date.
type BootstrapInput struct {
	TaskID           string `json:"task_id,omitempty"`
	UniqueIdentifier string `json:"unique_identifier,omitempty"`
	SkipFailedDates  bool   `json:"skip_failed_dates,omitempty"`
	Rows             []Row  `json:"rows"`
}

// Row mirrors one snapshot table row with a string valuation date.
type Row struct {
	TimeIndex  string   `json:"time_index"`
	Type       string   `json:"type"`
	TenorDays  float64  `json:"tenor_days"`
	CleanPrice *float64 `json:"clean_price"`
	DirtyPrice *float64 `json:"dirty_price"`
	Coupon     *float64 `json:"coupon"`
}

// CurvePoint is one output zero-curve point.
type CurvePoint struct {
	TimeIndex      string  `json:"time_index"`
	DaysToMaturity int     `json:"days_to_maturity"`
	ZeroRate       float64 `json:"zero_rate"`
}

// BootstrapOutput defines the JSON output schema.
type BootstrapOutput struct {
	TaskID           string       `json:"task_id,omitempty"`
	UniqueIdentifier string       `json:"unique_identifier,omitempty"`
	Points           []CurvePoint `json:"points"`
	Dates            int          `json:"dates"`
	Error            string       `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		usage()
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			usage()
			os.Exit(2)
		}
	}

	inputBytes, err := readInput(path)
	if err != nil {
		writeError(fmt.Sprintf("failed to read input: %v", err))
		return
	}

	input, err := parseInput(inputBytes)
	if err != nil {
		writeError(fmt.Sprintf("failed to parse JSON input: %v", err))
		return
	}

	out, err := buildCurves(input)
	if err != nil {
		writeError(err.Error())
		return
	}

	outputBytes, _ := json.Marshal(out)
	fmt.Println(string(outputBytes))
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  bootstrapcurve < input.json")
	fmt.Println("  bootstrapcurve -input /path/to/input.json")
	fmt.Println()
	fmt.Println("Read instrument snapshot rows, bootstrap one zero curve per date, output JSON to stdout.")
	fmt.Println()
	fmt.Println("Example input:")
	fmt.Println(`  {`)
	fmt.Println(`    "unique_identifier": "mxn_gov_zero",`)
	fmt.Println(`    "rows": [`)
	fmt.Println(`      {"time_index": "2026-01-09", "type": "overnight_rate", "tenor_days": 1, "dirty_price": 0.105},`)
	fmt.Println(`      {"time_index": "2026-01-09", "type": "zero_coupon", "tenor_days": 91, "dirty_price": 9.75},`)
	fmt.Println(`      ...`)
	fmt.Println(`    ]`)
	fmt.Println(`  }`)
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInput(raw []byte) (BootstrapInput, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return BootstrapInput{}, fmt.Errorf("empty input")
	}
	var input BootstrapInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return BootstrapInput{}, err
	}
	if len(input.Rows) == 0 {
		return BootstrapInput{}, fmt.Errorf("rows is required")
	}
	if err := validateRowColumns(trimmed); err != nil {
		return BootstrapInput{}, err
	}
	return input, nil
}

// validateRowColumns checks the raw table schema before any date is built:
// the union of keys across row objects must carry every required column.
func validateRowColumns(raw []byte) error {
	var table struct {
		Rows []map[string]json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(raw, &table); err != nil {
		return err
	}
	seen := make(map[string]bool)
	var cols []string
	for _, row := range table.Rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	return timeseries.ValidateColumns(cols)
}

func writeError(msg string) {
	output := BootstrapOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
	os.Exit(1)
}

func buildCurves(input BootstrapInput) (*BootstrapOutput, error) {
	obs := make([]timeseries.Observation, 0, len(input.Rows))
	for i, r := range input.Rows {
		date, err := time.Parse("2006-01-02", r.TimeIndex)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid time_index: %v", i, err)
		}
		family, err := bootstrap.ParseFamily(r.Type)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", i, err)
		}
		obs = append(obs, timeseries.Observation{
			TimeIndex: date,
			Row: bootstrap.Row{
				Type:       family,
				TenorDays:  r.TenorDays,
				CleanPrice: r.CleanPrice,
				DirtyPrice: r.DirtyPrice,
				Coupon:     r.Coupon,
			},
		})
	}

	policy := timeseries.FailBatch
	if input.SkipFailedDates {
		policy = timeseries.SkipDate
	}
	orch := timeseries.Orchestrator{
		UniqueIdentifier: input.UniqueIdentifier,
		OnError:          policy,
	}
	ts, err := orch.BuildCurves(obs)
	if err != nil {
		return nil, err
	}

	out := &BootstrapOutput{
		TaskID:           input.TaskID,
		UniqueIdentifier: input.UniqueIdentifier,
		Dates:            ts.Len(),
		Points:           []CurvePoint{},
	}
	for _, row := range ts.Rows() {
		out.Points = append(out.Points, CurvePoint{
			TimeIndex:      row.TimeIndex.Format("2006-01-02"),
			DaysToMaturity: row.DaysToMaturity,
			ZeroRate:       row.ZeroRate,
		})
	}
	return out, nil
}
