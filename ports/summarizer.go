package ports

import (
	"context"

	"github.com/StephenStolk/analyseX-sub001/domain/stats"
)

// Summarizer turns a statistics bundle into narrative text
type Summarizer interface {
	Summarize(ctx context.Context, bundle *stats.Bundle) (string, error)
}
