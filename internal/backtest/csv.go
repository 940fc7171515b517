package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

func WriteOutcomesCSV(path string, outcomes []Outcome) error {
	return writeFile(path, func(w io.Writer) error { return EncodeOutcomesCSV(w, outcomes) })
}

func WriteSummaryCSV(path string, summaries []StrategySummary) error {
	return writeFile(path, func(w io.Writer) error { return EncodeSummaryCSV(w, summaries) })
}

func EncodeOutcomesCSV(out io.Writer, outcomes []Outcome) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"date",
		"product_id",
		"category",
		"strategy",
		"prev_price",
		"price",
		"prior_inventory",
		"units_sold",
		"revenue",
		"stockout",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, o := range outcomes {
		row := []string{
			strconv.Itoa(o.Index),
			o.Date.String(),
			o.ProductID,
			string(o.Category),
			o.Strategy,
			fmtFloat(o.PrevPrice),
			fmtFloat(o.Price),
			strconv.Itoa(o.PriorInventory),
			fmtFloat(o.UnitsSold),
			fmtFloat(o.Revenue),
			strconv.FormatBool(o.Stockout),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func EncodeSummaryCSV(out io.Writer, summaries []StrategySummary) error {
	w := csv.NewWriter(out)

	header := []string{
		"strategy",
		"rows",
		"total_revenue",
		"avg_revenue_per_sku_day",
		"total_units_sold",
		"stockout_rate",
		"revenue_uplift_pct",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range summaries {
		row := []string{
			s.Strategy,
			strconv.Itoa(s.Rows),
			fmtFloat(s.TotalRevenue),
			fmtFloat(s.AvgRevenuePerSKUDay),
			fmtFloat(s.TotalUnitsSold),
			fmtFloat(s.StockoutRate),
			fmtFloat(s.RevenueUpliftPct),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeFile(path string, encode func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
