package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fashion-order-service/internal/model"
)

// SummaryRefresher recalcula el resumen de órdenes por paso.
type SummaryRefresher interface {
	RefreshSummary(ctx context.Context) (model.StatusSummary, error)
}

// StatusSummaryJob refresca el resumen que sirve /admin/orders/summary y el gauge de órdenes por paso.
type StatusSummaryJob struct {
	Orders SummaryRefresher
	Logger *slog.Logger
}

func NewStatusSummaryJob(orders SummaryRefresher, logger *slog.Logger) *StatusSummaryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusSummaryJob{Orders: orders, Logger: logger}
}

func (j *StatusSummaryJob) Name() string {
	return "orders.status_summary"
}

func (j *StatusSummaryJob) Run(ctx context.Context) error {
	if j == nil || j.Orders == nil {
		return errors.New("status summary job: dependencias sin configurar")
	}
	sum, err := j.Orders.RefreshSummary(ctx)
	if err != nil {
		return fmt.Errorf("status summary job: %w", err)
	}
	j.Logger.Debug("resumen de estados actualizado", "total", sum.Total)
	return nil
}
