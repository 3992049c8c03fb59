package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
)

const (
	farrowingRange = "Farrowing!A:F"
	saleableRange  = "Saleable!A:F"
)

var (
	farrowingHeader = []interface{}{"Sow", "Boar breed", "Bred", "Expected farrow", "Days until", "Status"}
	saleableHeader  = []interface{}{"Sow", "Boar breed", "Fattening", "Saleable", "Days until", "Piglets"}
)

// ScheduleExporter writes the pending farrow and saleable schedule to a spreadsheet.
type ScheduleExporter struct {
	repo   Repository
	logger *zap.Logger
}

// NewScheduleExporter wraps repo.
func NewScheduleExporter(repo Repository, logger *zap.Logger) *ScheduleExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleExporter{repo: repo, logger: logger}
}

// Export replaces both schedule tabs. Events are written in the order given.
func (e *ScheduleExporter) Export(ctx context.Context, farrows []models.FarrowEvent, saleables []models.SaleableEvent) error {
	if err := e.repo.ReplaceRange(ctx, farrowingRange, FarrowRows(farrows)); err != nil {
		return fmt.Errorf("export farrowing schedule: %w", err)
	}
	if err := e.repo.ReplaceRange(ctx, saleableRange, SaleableRows(saleables)); err != nil {
		return fmt.Errorf("export saleable schedule: %w", err)
	}

	e.logger.Info("schedule exported",
		zap.Int("farrows", len(farrows)),
		zap.Int("saleables", len(saleables)),
	)
	return nil
}

// FarrowRows renders events as sheet rows, header first.
func FarrowRows(events []models.FarrowEvent) [][]interface{} {
	rows := [][]interface{}{farrowingHeader}
	for _, ev := range events {
		status := "upcoming"
		switch {
		case ev.Resolved:
			status = "farrowed"
		case ev.IsOverdue:
			status = "overdue"
		}
		rows = append(rows, []interface{}{
			ev.SowName,
			ev.BoarBreed,
			cellDate(ev.BreedDate),
			lifecycle.FormatDate(ev.ExpectedDate),
			ev.DaysUntilFarrow,
			status,
		})
	}
	return rows
}

// SaleableRows renders events as sheet rows, header first.
func SaleableRows(events []models.SaleableEvent) [][]interface{} {
	rows := [][]interface{}{saleableHeader}
	for _, ev := range events {
		fattening := ""
		if ev.FatteningDate != nil {
			fattening = lifecycle.FormatDate(*ev.FatteningDate)
		}
		rows = append(rows, []interface{}{
			ev.SowName,
			ev.BoarBreed,
			fattening,
			lifecycle.FormatDate(ev.SaleableDate),
			ev.DaysUntilSaleable,
			ev.MaleCount + ev.FemaleCount,
		})
	}
	return rows
}

func cellDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return lifecycle.FormatDate(t)
}
