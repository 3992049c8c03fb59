package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/filter"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/internal/engine/projector"
	"github.com/mamadbah2/piggery/internal/metrics"
)

// DefaultSoonDays is the window used for "soon" markers when none is configured.
const DefaultSoonDays = 7

// SnapshotSource loads a joined view of one user's records.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID string) (models.HerdSnapshot, error)
}

// SnapshotStore persists aggregated dashboard snapshots.
type SnapshotStore interface {
	SaveDashboardSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
}

// Issue describes a record that was left out of, or looks inconsistent in, a derivation.
type Issue struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Skipped bool   `json:"skipped"`
}

// Dashboard is the derived herd overview for one moment in time.
type Dashboard struct {
	Date             time.Time              `json:"date"`
	Sows             filter.SowCounts       `json:"sows"`
	AvgLitterSize    int                    `json:"avg_litter_size"`
	AvgSaleWeight    int                    `json:"avg_sale_weight"`
	PigletsOnHand    int                    `json:"piglets_on_hand"`
	UpcomingFarrows  []models.FarrowEvent   `json:"upcoming_farrows"`
	OverdueFarrows   []models.FarrowEvent   `json:"overdue_farrows"`
	UpcomingSaleable []models.SaleableEvent `json:"upcoming_saleable"`
	PastDueSaleable  []models.SaleableEvent `json:"past_due_saleable"`
	Issues           []Issue                `json:"issues,omitempty"`
}

// Service derives dashboards, calendars and digests from herd snapshots.
type Service struct {
	source   SnapshotSource
	store    SnapshotStore
	metrics  *metrics.Metrics
	soonDays int
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a dashboard service. store and m may be nil.
func NewService(source SnapshotSource, store SnapshotStore, m *metrics.Metrics, soonDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if soonDays <= 0 {
		soonDays = DefaultSoonDays
	}
	return &Service{
		source:   source,
		store:    store,
		metrics:  m,
		soonDays: soonDays,
		logger:   logger,
		now:      time.Now,
	}
}

// SoonDays returns the configured "soon" window.
func (s *Service) SoonDays() int {
	return s.soonDays
}

type projection struct {
	snapshot  models.HerdSnapshot
	farrows   []models.FarrowEvent
	saleables []models.SaleableEvent
	issues    []Issue
}

func (s *Service) project(ctx context.Context, view, userID string, now time.Time) (projection, error) {
	snapshot, err := s.source.Snapshot(ctx, userID)
	if err != nil {
		return projection{}, fmt.Errorf("load herd snapshot: %w", err)
	}

	farrows, recordErrs := projector.ProjectFarrowEvents(snapshot.Breedings, now)
	saleables, litterErrs := projector.ProjectSaleableEvents(snapshot.Litters, now)
	recordErrs = append(recordErrs, litterErrs...)

	var issues []Issue
	for _, re := range recordErrs {
		s.logger.Warn("skipping record in derivation",
			zap.String("view", view),
			zap.String("kind", re.Kind),
			zap.String("id", re.ID),
			zap.Error(re.Err),
		)
		issues = append(issues, Issue{Kind: re.Kind, ID: re.ID, Message: re.Err.Error(), Skipped: true})
		s.metrics.ObserveSkipped(re.Kind, 1)
	}
	for _, litter := range snapshot.Litters {
		for _, anomaly := range litter.Anomalies() {
			s.logger.Warn("litter lifecycle anomaly",
				zap.String("litter_id", litter.ID),
				zap.String("anomaly", anomaly),
			)
			issues = append(issues, Issue{Kind: "litter", ID: litter.ID, Message: anomaly})
		}
	}

	s.metrics.ObserveDerivation(view)
	return projection{snapshot: snapshot, farrows: farrows, saleables: saleables, issues: issues}, nil
}

// Build derives the dashboard for userID at now. A non-empty query narrows the event lists
// to events whose sow name or boar breed contains it.
func (s *Service) Build(ctx context.Context, userID string, now time.Time, query string) (Dashboard, error) {
	p, err := s.project(ctx, "dashboard", userID, now)
	if err != nil {
		return Dashboard{}, err
	}

	farrows := filter.Search(p.farrows, query, farrowSearchFields)
	saleables := filter.Search(p.saleables, query, saleableSearchFields)

	return Dashboard{
		Date:             lifecycle.StartOfDay(now),
		Sows:             filter.SowStats(p.snapshot.Sows),
		AvgLitterSize:    filter.AverageLitterSize(p.snapshot.Breedings),
		AvgSaleWeight:    filter.AverageSaleWeight(p.snapshot.Litters),
		PigletsOnHand:    filter.TotalPiglets(p.snapshot.Litters),
		UpcomingFarrows:  projector.UpcomingFarrows(farrows),
		OverdueFarrows:   projector.OverdueFarrows(farrows),
		UpcomingSaleable: projector.UpcomingSaleable(saleables),
		PastDueSaleable:  projector.PastDueSaleable(saleables),
		Issues:           p.issues,
	}, nil
}

// EventQuery narrows event listings.
type EventQuery struct {
	Search          string
	WithinDays      int
	IncludeResolved bool
}

// FarrowEvents lists projected farrow events, expected date ascending.
func (s *Service) FarrowEvents(ctx context.Context, userID string, now time.Time, q EventQuery) ([]models.FarrowEvent, error) {
	p, err := s.project(ctx, "farrow_events", userID, now)
	if err != nil {
		return nil, err
	}

	events := filter.Search(p.farrows, q.Search, farrowSearchFields)
	if !q.IncludeResolved {
		events = append(projector.OverdueFarrows(events), projector.UpcomingFarrows(events)...)
	} else {
		events = filter.SortStable(events, func(a, b models.FarrowEvent) int {
			return a.ExpectedDate.Compare(b.ExpectedDate)
		})
	}
	if q.WithinDays > 0 {
		events = projector.FarrowsWithin(events, q.WithinDays)
	}
	return events, nil
}

// SaleableEvents lists projected saleable events, saleable date ascending.
func (s *Service) SaleableEvents(ctx context.Context, userID string, now time.Time, q EventQuery) ([]models.SaleableEvent, error) {
	p, err := s.project(ctx, "saleable_events", userID, now)
	if err != nil {
		return nil, err
	}

	events := filter.Search(p.saleables, q.Search, saleableSearchFields)
	if !q.IncludeResolved {
		events = append(projector.PastDueSaleable(events), projector.UpcomingSaleable(events)...)
	} else {
		events = filter.SortStable(events, func(a, b models.SaleableEvent) int {
			return a.SaleableDate.Compare(b.SaleableDate)
		})
	}
	if q.WithinDays > 0 {
		events = projector.SaleableWithin(events, q.WithinDays)
	}
	return events, nil
}

// Calendar lists the marked days of one month.
func (s *Service) Calendar(ctx context.Context, userID string, now time.Time, year int, month time.Month) ([]projector.DayMark, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d: %w", month, lifecycle.ErrInvalidDate)
	}
	p, err := s.project(ctx, "calendar", userID, now)
	if err != nil {
		return nil, err
	}
	cal := projector.BuildCalendar(p.farrows, p.saleables, s.soonDays)
	return cal.Month(year, month), nil
}

// Digest renders a plain-text summary suitable for a chat message.
func (s *Service) Digest(ctx context.Context, userID string, now time.Time) (string, error) {
	d, err := s.Build(ctx, userID, now, "")
	if err != nil {
		return "", err
	}
	return FormatDigest(d, s.soonDays), nil
}

// SaveSnapshot builds the dashboard and persists its counters.
func (s *Service) SaveSnapshot(ctx context.Context, userID string, now time.Time) (models.DashboardSnapshot, error) {
	if s.store == nil {
		return models.DashboardSnapshot{}, errors.New("snapshot store not configured")
	}

	d, err := s.Build(ctx, userID, now, "")
	if err != nil {
		return models.DashboardSnapshot{}, err
	}

	snapshot := models.DashboardSnapshot{
		UserID:           userID,
		Date:             d.Date,
		TotalSows:        d.Sows.Total,
		PregnantSows:     d.Sows.Pregnant,
		AvailableSows:    d.Sows.Available,
		AvgLitterSize:    d.AvgLitterSize,
		AvgSaleWeight:    d.AvgSaleWeight,
		UpcomingFarrows:  len(d.UpcomingFarrows),
		OverdueFarrows:   len(d.OverdueFarrows),
		UpcomingSaleable: len(d.UpcomingSaleable),
		PastDueSaleable:  len(d.PastDueSaleable),
		SkippedRecords:   skipped(d.Issues),
		CreatedAt:        s.now().UTC(),
	}

	if err := s.store.SaveDashboardSnapshot(ctx, snapshot); err != nil {
		return models.DashboardSnapshot{}, fmt.Errorf("save dashboard snapshot: %w", err)
	}

	s.logger.Info("dashboard snapshot saved",
		zap.String("user_id", userID),
		zap.Time("date", snapshot.Date),
	)
	return snapshot, nil
}

func skipped(issues []Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Skipped {
			n++
		}
	}
	return n
}

func farrowSearchFields(e models.FarrowEvent) []string {
	return []string{e.SowName, e.BoarBreed}
}

func saleableSearchFields(e models.SaleableEvent) []string {
	return []string{e.SowName, e.BoarBreed}
}

// FormatDigest renders d as a short multi-line text.
func FormatDigest(d Dashboard, soonDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Herd report %s\n", lifecycle.FormatDate(d.Date))
	fmt.Fprintf(&b, "Sows: %d total, %d pregnant, %d available\n", d.Sows.Total, d.Sows.Pregnant, d.Sows.Available)
	fmt.Fprintf(&b, "Avg litter size: %d, avg sale weight: %d kg\n", d.AvgLitterSize, d.AvgSaleWeight)

	if len(d.OverdueFarrows) > 0 {
		b.WriteString("\nOverdue farrowings:\n")
		for _, e := range d.OverdueFarrows {
			fmt.Fprintf(&b, "- %s expected %s (%d days late)\n", displayName(e.SowName, e.SowID), lifecycle.FormatDate(e.ExpectedDate), -e.DaysUntilFarrow)
		}
	}

	soonFarrows := projector.FarrowsWithin(d.UpcomingFarrows, soonDays)
	if len(soonFarrows) > 0 {
		fmt.Fprintf(&b, "\nFarrowing within %d days:\n", soonDays)
		for _, e := range soonFarrows {
			fmt.Fprintf(&b, "- %s on %s (%s)\n", displayName(e.SowName, e.SowID), lifecycle.FormatDate(e.ExpectedDate), inDays(e.DaysUntilFarrow))
		}
	}

	if len(d.PastDueSaleable) > 0 {
		b.WriteString("\nReady for sale:\n")
		for _, e := range d.PastDueSaleable {
			fmt.Fprintf(&b, "- litter of %s since %s (%d piglets)\n", displayName(e.SowName, e.SowID), lifecycle.FormatDate(e.SaleableDate), e.MaleCount+e.FemaleCount)
		}
	}

	soonSaleable := projector.SaleableWithin(d.UpcomingSaleable, soonDays)
	if len(soonSaleable) > 0 {
		fmt.Fprintf(&b, "\nSaleable within %d days:\n", soonDays)
		for _, e := range soonSaleable {
			fmt.Fprintf(&b, "- litter of %s on %s (%s)\n", displayName(e.SowName, e.SowID), lifecycle.FormatDate(e.SaleableDate), inDays(e.DaysUntilSaleable))
		}
	}

	if len(d.Issues) > 0 {
		fmt.Fprintf(&b, "\n%d record(s) need attention.\n", len(d.Issues))
	}

	return strings.TrimRight(b.String(), "\n")
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func inDays(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", n)
}
