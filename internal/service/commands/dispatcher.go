package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/piggery/internal/domain/models"
	"github.com/mamadbah2/piggery/internal/engine/filter"
	"github.com/mamadbah2/piggery/internal/engine/lifecycle"
	"github.com/mamadbah2/piggery/internal/engine/projector"
	"github.com/mamadbah2/piggery/internal/service/dashboard"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const maxListed = 10

// DashboardReader is the subset of the dashboard service used to answer commands.
type DashboardReader interface {
	Build(ctx context.Context, userID string, now time.Time, query string) (dashboard.Dashboard, error)
	SoonDays() int
}

// Dispatcher answers parsed chat commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements Dispatcher against one farm owner's records.
type Service struct {
	ownerID   string
	dashboard DashboardReader
	herd      dashboard.SnapshotSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher answering for ownerID.
func NewService(ownerID string, reader DashboardReader, herd dashboard.SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ownerID:   ownerID,
		dashboard: reader,
		herd:      herd,
		logger:    logger,
		now:       time.Now,
	}
}

var usage = map[models.CommandType]models.AutomationReply{
	models.CommandFarrow: {
		Title:   "/farrow [days]",
		Message: "Overdue farrowings and those expected within the next days.",
	},
	models.CommandSaleable: {
		Title:   "/saleable [days]",
		Message: "Litters ready for sale and those becoming saleable within the next days.",
	},
	models.CommandStats: {
		Title:   "/stats",
		Message: "Sow counts and herd averages.",
	},
	models.CommandSows: {
		Title:   "/sows [preset] [name]",
		Message: "Search sows. Presets: all, pregnant, available, active, inactive.",
	},
	models.CommandHelp: {
		Title:   "/help",
		Message: "Show this list.",
	},
}

var helpOrder = []models.CommandType{
	models.CommandFarrow,
	models.CommandSaleable,
	models.CommandStats,
	models.CommandSows,
	models.CommandHelp,
}

// HandleCommand builds the reply text for cmd.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	now := s.now()

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandFarrow:
		days, err := s.windowArg(cmd)
		if err != nil {
			return "", err
		}
		d, err := s.dashboard.Build(ctx, s.ownerID, now, "")
		if err != nil {
			return "", err
		}
		return formatFarrows(d, days), nil
	case models.CommandSaleable:
		days, err := s.windowArg(cmd)
		if err != nil {
			return "", err
		}
		d, err := s.dashboard.Build(ctx, s.ownerID, now, "")
		if err != nil {
			return "", err
		}
		return formatSaleable(d, days), nil
	case models.CommandStats:
		d, err := s.dashboard.Build(ctx, s.ownerID, now, "")
		if err != nil {
			return "", err
		}
		return formatStats(d), nil
	case models.CommandSows:
		return s.searchSows(ctx, cmd.Args)
	case models.CommandHelp:
		return HelpText(), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// HelpText lists the supported commands.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Supported commands:")
	for _, t := range helpOrder {
		reply := usage[t]
		fmt.Fprintf(&b, "\n%s - %s", reply.Title, reply.Message)
	}
	return b.String()
}

func (s *Service) windowArg(cmd models.Command) (int, error) {
	if len(cmd.Args) == 0 {
		return s.dashboard.SoonDays(), nil
	}
	days, err := strconv.Atoi(cmd.Args[0])
	if err != nil || days < 0 {
		return 0, fmt.Errorf("%s: %w", usage[cmd.Type].Title, ErrInvalidArguments)
	}
	return days, nil
}

func (s *Service) searchSows(ctx context.Context, args []string) (string, error) {
	preset := ""
	if len(args) > 0 {
		if _, err := filter.LookupPreset(args[0]); err == nil {
			preset = args[0]
			args = args[1:]
		}
	}
	query := strings.Join(args, " ")

	snapshot, err := s.herd.Snapshot(ctx, s.ownerID)
	if err != nil {
		return "", err
	}
	sows, err := filter.Sows(snapshot.Sows, query, preset)
	if err != nil {
		return "", fmt.Errorf("%s: %w", usage[models.CommandSows].Title, ErrInvalidArguments)
	}

	if len(sows) == 0 {
		return "No sows match.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d sow(s):", len(sows))
	for i, sow := range sows {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... and %d more", len(sows)-maxListed)
			break
		}
		status := "pregnant"
		if sow.IsAvailable {
			status = "available"
		}
		if !sow.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(&b, "\n- %s (%s)", sow.Name, status)
	}
	return b.String(), nil
}

func formatFarrows(d dashboard.Dashboard, days int) string {
	soon := projector.FarrowsWithin(d.UpcomingFarrows, days)
	if len(d.OverdueFarrows) == 0 && len(soon) == 0 {
		return fmt.Sprintf("No farrowings due within %d days.", days)
	}

	var b strings.Builder
	for _, e := range d.OverdueFarrows {
		fmt.Fprintf(&b, "OVERDUE %s: expected %s (%d days ago)\n", e.SowName, lifecycle.FormatDate(e.ExpectedDate), -e.DaysUntilFarrow)
	}
	for _, e := range soon {
		fmt.Fprintf(&b, "%s: %s (in %d days)\n", e.SowName, lifecycle.FormatDate(e.ExpectedDate), e.DaysUntilFarrow)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSaleable(d dashboard.Dashboard, days int) string {
	soon := projector.SaleableWithin(d.UpcomingSaleable, days)
	if len(d.PastDueSaleable) == 0 && len(soon) == 0 {
		return fmt.Sprintf("No litters saleable within %d days.", days)
	}

	var b strings.Builder
	for _, e := range d.PastDueSaleable {
		fmt.Fprintf(&b, "READY litter of %s: since %s, %d piglets\n", e.SowName, lifecycle.FormatDate(e.SaleableDate), e.MaleCount+e.FemaleCount)
	}
	for _, e := range soon {
		fmt.Fprintf(&b, "Litter of %s: %s (in %d days), %d piglets\n", e.SowName, lifecycle.FormatDate(e.SaleableDate), e.DaysUntilSaleable, e.MaleCount+e.FemaleCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(d dashboard.Dashboard) string {
	return fmt.Sprintf(
		"Sows: %d (pregnant %d, available %d, inactive %d)\nAvg litter size: %d\nAvg sale weight: %d kg\nPiglets on hand: %d",
		d.Sows.Total, d.Sows.Pregnant, d.Sows.Available, d.Sows.Inactive,
		d.AvgLitterSize, d.AvgSaleWeight, d.PigletsOnHand,
	)
}
