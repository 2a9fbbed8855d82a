package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

const instrumentationName = "github.com/BaSui01/onboardflow/workflow"

// WorkflowObserver 把状态转换与提交记为 OTel 指标，随 OTLP 导出
type WorkflowObserver struct {
	transitions metric.Int64Counter
	commits     metric.Int64Counter
}

var _ workflow.Observer = (*WorkflowObserver)(nil)

// NewWorkflowObserver 使用 mp 创建观察者；mp 为 nil 时使用全局 MeterProvider
func NewWorkflowObserver(mp metric.MeterProvider) (*WorkflowObserver, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	transitions, err := meter.Int64Counter("onboarding.transitions",
		metric.WithDescription("Onboarding workflow state transitions"))
	if err != nil {
		return nil, err
	}
	commits, err := meter.Int64Counter("onboarding.commits",
		metric.WithDescription("Committed employee records"))
	if err != nil {
		return nil, err
	}
	return &WorkflowObserver{transitions: transitions, commits: commits}, nil
}

func (o *WorkflowObserver) OnTransition(ctx context.Context, _ string, t workflow.Transition) {
	o.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", string(t.From.Kind)),
		attribute.String("to", string(t.To.Kind)),
	))
}

func (o *WorkflowObserver) OnCommit(ctx context.Context, _ string, rec types.EmployeeRecord) {
	o.commits.Add(ctx, 1, metric.WithAttributes(attribute.Bool("has_designation", rec.Designation != "")))
}
