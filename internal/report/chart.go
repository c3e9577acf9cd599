package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// RenderValueChart renders the portfolio value series as a PNG line chart.
func RenderValueChart(result *models.AnalysisResult) ([]byte, error) {
	return renderLine("Portfolio Value", result.Value)
}

// RenderUnrealizedPnLChart renders the unrealized profit/loss series.
func RenderUnrealizedPnLChart(result *models.AnalysisResult) ([]byte, error) {
	return renderLine("Unrealized P/L", result.UnrealizedPnL)
}

func renderLine(title string, s timeseries.Series) ([]byte, error) {
	clean := s.DropNaN()
	if clean.Len() < 2 {
		return nil, fmt.Errorf("not enough observations to chart")
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1024,
		Height: 400,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    title,
				XValues: clean.Times(),
				YValues: clean.Values(),
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}
