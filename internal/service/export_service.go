package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hexfit/gymops-api/internal/models"
	appErrors "github.com/hexfit/gymops-api/pkg/errors"
	"github.com/hexfit/gymops-api/pkg/export"
)

// ExportFormat selects the rendering backend for staffing sheets.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type scheduleExportSource interface {
	Get(ctx context.Context, scheduleID string) (*models.GeneratedSchedule, error)
	GetSlots(ctx context.Context, scheduleID string) ([]models.ClassSlot, *models.StaffingSummary, error)
}

type rosterNameSource interface {
	ListActiveByTeam(ctx context.Context, teamID string) ([]models.Coach, error)
}

// ExportResult carries rendered bytes plus content metadata for the handler.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders staffing sheets for a generated schedule so front-desk
// staff can print the week.
type ExportService struct {
	schedules scheduleExportSource
	coaches   rosterNameSource
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	enabled   bool
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedules scheduleExportSource, coaches rosterNameSource, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		coaches:   coaches,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		enabled:   enabled,
		logger:    logger,
	}
}

var staffingSheetHeaders = []string{"Day", "Start", "End", "Class", "Location", "Seat", "Coach"}

// StaffingSheet renders all slots of a schedule as a printable table. Seats
// without an assignee render with an empty coach cell.
func (s *ExportService) StaffingSheet(ctx context.Context, scheduleID string, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	schedule, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	slots, _, err := s.schedules.GetSlots(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	names, err := s.coachNames(ctx, schedule.TeamID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: staffingSheetHeaders}
	for _, slot := range slots {
		coach := ""
		if slot.AssigneeCoachID != nil {
			coach = names[*slot.AssigneeCoachID]
			if coach == "" {
				coach = *slot.AssigneeCoachID
			}
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":      slot.StartsAt.Weekday().String(),
			"Start":    slot.StartsAt.Format("15:04"),
			"End":      slot.EndsAt.Format("15:04"),
			"Class":    slot.ClassName,
			"Location": slot.LocationID,
			"Seat":     strconv.Itoa(slot.SeatIndex + 1),
			"Coach":    coach,
		})
	}

	weekLabel := schedule.WeekStart.Format("2006-01-02")
	switch format {
	case FormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("staffing-%s.csv", weekLabel),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case FormatPDF:
		title := fmt.Sprintf("Staffing sheet - week of %s", weekLabel)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("staffing-%s.pdf", weekLabel),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// ParseExportFormat normalises a query-string format value.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

func (s *ExportService) coachNames(ctx context.Context, teamID string) (map[string]string, error) {
	roster, err := s.coaches.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team roster")
	}
	names := make(map[string]string, len(roster))
	for _, coach := range roster {
		names[coach.ID] = coach.FullName
	}
	return names, nil
}
