package admission

import (
	"context"
	"time"

	"github.com/hdtickets/admission/internal/metrics"
	"github.com/hdtickets/admission/internal/request"
)

// pipelineWithMetrics decorates Pipeline with metrics instrumentation.
type pipelineWithMetrics struct {
	next    Pipeline
	metrics metrics.BusinessMetrics
}

// NewPipelineWithMetrics wraps a Pipeline with metrics recording. The
// operation label carries the endpoint so per-endpoint admission rates and
// latencies are visible without a separate instrument.
func NewPipelineWithMetrics(pipeline Pipeline, m metrics.BusinessMetrics) Pipeline {
	return &pipelineWithMetrics{
		next:    pipeline,
		metrics: m,
	}
}

// Admit records metrics for admission decisions.
func (p *pipelineWithMetrics) Admit(
	ctx context.Context,
	req *request.Request,
	endpoint string,
) (*Result, error) {
	start := time.Now()
	result, err := p.next.Admit(ctx, req, endpoint)

	status := "admitted"
	if err != nil {
		status = "denied"
	}

	p.metrics.RecordOperation(ctx, "admission", endpoint, status)
	p.metrics.RecordDuration(ctx, "admission", endpoint, time.Since(start), status)

	return result, err
}
