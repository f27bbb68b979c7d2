package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"HelmetMonitorAPI/internal/logger"

	"github.com/jung-kurt/gofpdf"
)

// ReportService renders the recent alert history and current fleet
// status as a PDF for offline incident review.
type ReportService struct {
	alertService IAlertService
	log          *logger.Logger
}

func NewReportService(alertService IAlertService, log *logger.Logger) *ReportService {
	return &ReportService{
		alertService: alertService,
		log:          log,
	}
}

func (s *ReportService) GenerateAlertReport(ctx context.Context) ([]byte, error) {
	data, err := s.alertService.GetLatestAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect report data: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Helmet Monitor - Alert Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Helmet Monitor - Alert Report")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Current Status")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	status := data.Status
	locationText := "unknown"
	if status.Location != nil {
		locationText = fmt.Sprintf("%.5f, %.5f", status.Location.Lat, status.Location.Lng)
	}
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"Helmet: %s | Accident: %v | Fatigue: %s | Location: %s | Last update: %s",
		status.Helmet, status.Accident, status.Fatigue, locationText, status.LastUpdate), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Recent Alerts (%d)", len(data.Alerts)))
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(45, 7, "Timestamp", "1", 0, "L", false, 0, "")
	pdf.CellFormat(22, 7, "Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(22, 7, "Severity", "1", 0, "L", false, 0, "")
	pdf.CellFormat(100, 7, "Message", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, alert := range data.Alerts {
		pdf.CellFormat(45, 6, alert.Timestamp, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, alert.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, alert.Severity, "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, alert.Message, "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	s.log.Info("Alert report generated: %d alerts, %d bytes", len(data.Alerts), buf.Len())
	return buf.Bytes(), nil
}
