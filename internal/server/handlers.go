package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/report"
)

const buyDateLayout = "2006-01-02"

// analysisRequestBody is the wire form of an analysis request. Buy dates
// arrive as plain calendar dates, not RFC3339 timestamps.
type analysisRequestBody struct {
	Holdings []struct {
		Ticker  string  `json:"ticker"`
		Shares  float64 `json:"shares"`
		BuyDate string  `json:"buy_date"`
	} `json:"holdings"`
	Benchmark    string  `json:"benchmark"`
	RiskFreeRate float64 `json:"risk_free_rate"`
}

func (b *analysisRequestBody) toRequest() (models.AnalysisRequest, error) {
	req := models.AnalysisRequest{
		Benchmark:    strings.ToUpper(strings.TrimSpace(b.Benchmark)),
		RiskFreeRate: b.RiskFreeRate,
	}
	for i, h := range b.Holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			return req, fmt.Errorf("holding %d: ticker is required", i)
		}
		if h.Shares <= 0 {
			return req, fmt.Errorf("holding %s: shares must be positive", ticker)
		}
		buyDate, err := time.Parse(buyDateLayout, h.BuyDate)
		if err != nil {
			return req, fmt.Errorf("holding %s: invalid buy_date %q (want YYYY-MM-DD)", ticker, h.BuyDate)
		}
		req.Holdings = append(req.Holdings, models.Holding{
			Ticker:  ticker,
			Shares:  h.Shares,
			BuyDate: buyDate,
		})
	}
	return req, nil
}

// handleHealth returns a simple liveness response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": common.Version,
	})
}

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}

// handleAnalysis runs a portfolio analysis and returns the full result.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var body analysisRequestBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	req, err := body.toRequest()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Analysis failed")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.storeResult(result)
	WriteJSON(w, http.StatusOK, result)
}

// handleAnalysisArtifact serves derived artifacts for a completed
// analysis: /api/analysis/{id}/report.xlsx and /api/analysis/{id}/chart.png.
func (s *Server) handleAnalysisArtifact(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	id, artifact := parts[0], parts[1]

	result, ok := s.getResult(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
		return
	}

	switch artifact {
	case "report.xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "portfolio-"+id+".xlsx"))
		if err := report.WriteWorkbook(w, result); err != nil {
			s.logger.Error().Err(err).Str("id", id).Msg("Workbook export failed")
		}
	case "chart.png":
		s.servePNG(w, result, report.RenderValueChart)
	case "pnl.png":
		s.servePNG(w, result, report.RenderUnrealizedPnLChart)
	default:
		WriteError(w, http.StatusNotFound, "Unknown artifact "+artifact)
	}
}

func (s *Server) servePNG(w http.ResponseWriter, result *models.AnalysisResult, render func(*models.AnalysisResult) ([]byte, error)) {
	png, err := render(result)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
