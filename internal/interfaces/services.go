package interfaces

import (
	"context"

	"github.com/quantlens/quantlens/internal/models"
)

// AnalysisService fetches raw series for a request's holdings and runs the
// analytics engine over them.
type AnalysisService interface {
	Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}
