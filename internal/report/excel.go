// Package report renders an AnalysisResult to presentation artifacts: a
// multi-sheet XLSX workbook and a portfolio value chart. It consumes the
// result read-only and owns no analytics.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quantlens/quantlens/internal/models"
)

const (
	sheetInfo         = "Report Info"
	sheetPerformance  = "Performance Overview"
	sheetRisk         = "Risk Analysis"
	sheetFundamentals = "Fundamentals"
	sheetDuPont       = "DuPont"
	sheetDividends    = "Dividends"
)

// WriteWorkbook streams the analysis as a multi-sheet spreadsheet.
func WriteWorkbook(w io.Writer, result *models.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeInfoSheet(f, result); err != nil {
		return err
	}
	if err := writePerformanceSheet(f, result); err != nil {
		return err
	}
	if err := writeRiskSheet(f, result); err != nil {
		return err
	}
	if err := writeFundamentalsSheet(f, result); err != nil {
		return err
	}
	if err := writeDuPontSheet(f, result); err != nil {
		return err
	}
	if err := writeDividendsSheet(f, result); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheetInfo)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSheet creates a sheet with a frozen, auto-sized header row.
func writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(headers))
	widths := make([]int, len(headers))
	for i, h := range headers {
		header[i] = h
		widths[i] = len(h)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
		for c, v := range row {
			if c >= len(widths) {
				break
			}
			if l := len(fmt.Sprint(v)); l > widths[c] {
				widths[c] = l
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if w > 40 {
			w = 40
		}
		if err := f.SetColWidth(name, col, col, float64(w)+2); err != nil {
			return err
		}
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cell renders an optional value; absent metrics stay blank.
func cell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func writeInfoSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := [][]interface{}{
		{"Report ID", result.ID},
		{"Generated", result.GeneratedAt.Format(time.RFC3339)},
		{"Benchmark", result.Benchmark},
		{"Risk-Free Rate", result.RiskFreeRate},
		{"Holdings", len(result.Holdings)},
		{"Best Performer", result.BestPerformer},
		{"Worst Performer", result.WorstPerformer},
		{"Total Income", result.Income.TotalIncome},
	}
	return writeSheet(f, sheetInfo, []string{"Field", "Value"}, rows)
}

func writePerformanceSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(result.Holdings)+8)
	for _, h := range result.Holdings {
		rows = append(rows, []interface{}{
			h.Ticker, h.Shares, h.BuyDate.Format("2006-01-02"),
			cell(h.BuyPrice), cell(h.LatestPrice), cell(h.Value),
			cell(h.WeightPct), cell(h.GainLossPct), cell(h.GainLossValue),
		})
	}
	m := result.Metrics
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Cumulative Return", m.CumulativeReturn},
		[]interface{}{"CAGR", m.CAGR},
		[]interface{}{"Volatility", m.Volatility},
		[]interface{}{"Sharpe", cell(m.Sharpe)},
		[]interface{}{"Sortino", cell(m.Sortino)},
		[]interface{}{"Max Drawdown", cell(m.MaxDrawdown)},
		[]interface{}{"Gain/Loss", cell(m.PFGainLoss)},
	)
	headers := []string{"Ticker", "Shares", "Buy Date", "Buy Price", "Latest Price", "Value", "Weight %", "Gain/Loss %", "Gain/Loss"}
	return writeSheet(f, sheetPerformance, headers, rows)
}

func writeRiskSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(result.Risk))
	for _, r := range result.Risk {
		rows = append(rows, []interface{}{
			r.Ticker, r.Observations, r.Volatility, cell(r.Beta),
			r.MaxDrawdown, r.VaR95, cell(r.CVaR95),
		})
	}
	headers := []string{"Ticker", "Observations", "Volatility", "Beta", "Max Drawdown", "VaR 95", "CVaR 95"}
	return writeSheet(f, sheetRisk, headers, rows)
}

func writeFundamentalsSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(result.Fundamentals))
	for _, r := range result.Fundamentals {
		rows = append(rows, []interface{}{
			r.Ticker, cell(r.EPS), cell(r.MarketCap), cell(r.PE), cell(r.PB),
			cell(r.ROEPct), cell(r.ROAPct), cell(r.ROCEPct),
			cell(r.ProfitMarginPct), cell(r.OperatingMarginPct),
			cell(r.DebtToEquity), cell(r.CurrentRatio),
			cell(r.RevenueYoYPct), cell(r.RevenueCAGRPct),
			r.QualityBucket,
		})
	}
	headers := []string{
		"Ticker", "EPS", "Market Cap", "P/E", "P/B", "ROE %", "ROA %", "ROCE %",
		"Profit Margin %", "Operating Margin %", "D/E", "Current Ratio",
		"Revenue YoY %", "Revenue CAGR %", "Quality",
	}
	return writeSheet(f, sheetFundamentals, headers, rows)
}

func writeDuPontSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(result.DuPont))
	for _, r := range result.DuPont {
		rows = append(rows, []interface{}{
			r.Ticker, r.Year, cell(r.NetMarginPct), cell(r.AssetTurnover),
			cell(r.EquityMultiplier), cell(r.ROEPct), cell(r.ROAPct),
		})
	}
	headers := []string{"Ticker", "Year", "Net Margin %", "Asset Turnover", "Equity Multiplier", "ROE %", "ROA %"}
	return writeSheet(f, sheetDuPont, headers, rows)
}

func writeDividendsSheet(f *excelize.File, result *models.AnalysisResult) error {
	rows := make([][]interface{}, 0, len(result.Dividends)+5)
	for _, r := range result.Dividends {
		lastEx := ""
		if r.LastExDate != nil {
			lastEx = r.LastExDate.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			r.Ticker, r.SinceBuy, r.TTM, lastEx, cell(r.YieldOnCostPct),
			cell(r.CurrentYieldPct), cell(r.CAGRPct),
			cell(r.PayoutRatioPct), cell(r.RetentionPct),
		})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Total Income", result.Income.TotalIncome},
		[]interface{}{"Forward Yield %", cell(result.Income.ForwardYieldPct)},
		[]interface{}{"Actual Yield %", cell(result.Income.ActualYieldPct)},
		[]interface{}{"Payers Coverage %", cell(result.Income.PayersCoveragePct)},
	)
	headers := []string{"Ticker", "Since Buy", "TTM", "Last Ex-Date", "Yield on Cost %", "Current Yield %", "CAGR %", "Payout %", "Retention %"}
	return writeSheet(f, sheetDividends, headers, rows)
}
