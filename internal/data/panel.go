package data

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"sku-pricing/internal/model"
)

var (
	// ErrMissingColumn is returned when an input file lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrNoRows is returned when the feature/prediction join is empty.
	ErrNoRows = errors.New("no rows after joining features and predictions")
	// ErrMissingPrediction is returned for an empty or NaN forecast value.
	ErrMissingPrediction = errors.New("missing predicted_units_sold")
)

var featureColumns = []string{
	"date",
	"product_id",
	"prev_price",
	"cost_price",
	"min_margin_pct",
	"prev_inventory",
	"sales_roll_mean_7",
	"clearance_days",
}

var predictionColumns = []string{
	"date",
	"product_id",
	"predicted_units_sold",
}

// LoadPanelCSV reads the feature table and the demand forecast table and
// inner-joins them on (date, product_id).
func LoadPanelCSV(featuresPath, predictionsPath string) (model.Panel, error) {
	ff, err := os.Open(featuresPath)
	if err != nil {
		return nil, eris.Wrapf(err, "open features %s", featuresPath)
	}
	defer ff.Close()

	pf, err := os.Open(predictionsPath)
	if err != nil {
		return nil, eris.Wrapf(err, "open predictions %s", predictionsPath)
	}
	defer pf.Close()

	return ParsePanelCSV(ff, pf)
}

// ParsePanelCSV joins features and predictions by header name. Extra columns
// are ignored; category is optional and defaults to "unknown". The result is
// ordered by (date, product_id).
func ParsePanelCSV(features, predictions io.Reader) (model.Panel, error) {
	forecast, err := readPredictions(predictions)
	if err != nil {
		return nil, err
	}

	t, err := readTable(features, "features", featureColumns)
	if err != nil {
		return nil, err
	}

	panel := model.Panel{}
	for line, rec := range t.rows {
		row, err := t.featureRow(rec)
		if err != nil {
			return nil, eris.Wrapf(err, "features line %d", line+2)
		}
		units, ok := forecast[row.Key()]
		if !ok {
			continue
		}
		row.PredictedUnitsSold = units
		panel = append(panel, row)
	}

	if len(panel) == 0 {
		return nil, eris.Wrap(ErrNoRows, "join panel")
	}
	return panel.Normalized(), nil
}

func readPredictions(r io.Reader) (map[string]float64, error) {
	t, err := readTable(r, "predictions", predictionColumns)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(t.rows))
	for line, rec := range t.rows {
		d, err := model.ParseDate(t.get(rec, "date"))
		if err != nil {
			return nil, eris.Wrapf(err, "predictions line %d", line+2)
		}
		raw := t.get(rec, "predicted_units_sold")
		v, err := strconv.ParseFloat(raw, 64)
		if raw == "" || err != nil || math.IsNaN(v) {
			return nil, eris.Wrapf(ErrMissingPrediction, "predictions line %d: %q", line+2, raw)
		}
		key := model.PanelRow{Date: d, ProductID: t.get(rec, "product_id")}.Key()
		if _, dup := out[key]; !dup {
			out[key] = v
		}
	}
	return out, nil
}

type table struct {
	index map[string]int
	rows  [][]string
}

func readTable(r io.Reader, name string, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.Wrapf(ErrMissingColumn, "%s: empty file", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read header", name)
	}

	t := &table{index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			return nil, eris.Wrapf(ErrMissingColumn, "%s: %s", name, col)
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read rows", name)
	}
	t.rows = rows
	return t, nil
}

func (t *table) get(rec []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) featureRow(rec []string) (model.PanelRow, error) {
	var (
		row model.PanelRow
		err error
	)
	if row.Date, err = model.ParseDate(t.get(rec, "date")); err != nil {
		return row, err
	}
	row.ProductID = t.get(rec, "product_id")
	row.Category = model.Category(t.get(rec, "category"))
	row.Category = row.CategoryOrUnknown()

	floats := []struct {
		col string
		dst *float64
	}{
		{"prev_price", &row.PrevPrice},
		{"cost_price", &row.CostPrice},
		{"min_margin_pct", &row.MinMarginPct},
		{"sales_roll_mean_7", &row.SalesRollMean7},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(t.get(rec, f.col), f.col); err != nil {
			return row, err
		}
	}
	if row.PrevInventory, err = parseCount(t.get(rec, "prev_inventory"), "prev_inventory"); err != nil {
		return row, err
	}
	if row.ClearanceDays, err = parseCount(t.get(rec, "clearance_days"), "clearance_days"); err != nil {
		return row, err
	}
	return row, nil
}

func parseFloat(s, col string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "parse %s", col)
	}
	return v, nil
}

// parseCount accepts "12" and pandas-style "12.0".
func parseCount(s, col string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := parseFloat(s, col)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("parse %s: %q is not a whole number", col, s)
	}
	return int(v), nil
}
