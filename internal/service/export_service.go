package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/pkg/export"
	"github.com/noah-isme/intervention-insights-api/pkg/storage"
)

type reportAnalytics interface {
	Overview(ctx context.Context, opts AnalyticsOptions) (*AnalyticsView, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	analytics reportAnalytics
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(analytics reportAnalytics, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		analytics: analytics,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds dataset according to job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	rangePart := "settings"
	if job.Params.TimeRange != nil {
		rangePart = sanitizeFilename(string(*job.Params.TimeRange))
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", strings.ToLower(string(job.Type)), rangePart, sanitizeFilename(job.ID), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	opts := AnalyticsOptions{TimeRange: job.Params.TimeRange, Demo: job.Params.Demo}
	switch job.Type {
	case models.ReportTypeEffectiveness:
		groupBy := models.GroupByIntervention
		opts.GroupBy = &groupBy
		view, err := s.analytics.Overview(ctx, opts)
		if err != nil {
			return export.Dataset{}, "", err
		}
		return effectivenessDataset(view), reportTitle("Intervention Effectiveness", view), nil
	case models.ReportTypeComparison:
		opts.Comparison = true
		view, err := s.analytics.Overview(ctx, opts)
		if err != nil {
			return export.Dataset{}, "", err
		}
		return comparisonDataset(view), reportTitle("Intervention Comparison", view), nil
	case models.ReportTypeSignificance:
		view, err := s.analytics.Overview(ctx, opts)
		if err != nil {
			return export.Dataset{}, "", err
		}
		return significanceDataset(view), reportTitle("Significant Interventions", view), nil
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func reportTitle(prefix string, view *AnalyticsView) string {
	title := fmt.Sprintf("%s (%s)", prefix, view.Settings.TimeRange)
	if view.Demo {
		title += " demo data"
	}
	return title
}

// reportNotes describes the data behind a report.
func reportNotes(view *AnalyticsView) []string {
	window := "all recorded data"
	if view.WindowStart != nil {
		window = "since " + view.WindowStart.UTC().Format("2006-01-02")
	}
	notes := []string{
		fmt.Sprintf("Samples: %d, %s", view.SampleCount, window),
		fmt.Sprintf("Data source: %s", view.Settings.DataSource),
	}
	if view.SignificanceTest != "" {
		notes = append(notes, fmt.Sprintf("Significance: %s at alpha %.2f", view.SignificanceTest, view.Threshold))
	}
	if view.Demo {
		notes = append(notes, "Demonstration dataset; the intervention store was unavailable.")
	}
	return notes
}

func effectivenessDataset(view *AnalyticsView) export.Dataset {
	headers := []string{"Intervention", "Effectiveness", "Average Growth", "Weeks To Target", "Students", "Samples"}
	rows := make([][]string, 0, len(view.ByIntervention))
	for _, summary := range view.ByIntervention {
		rows = append(rows, []string{
			summary.InterventionType,
			formatPercent(summary.Effectiveness),
			strconv.FormatFloat(summary.AverageGrowth, 'f', 1, 64),
			strconv.Itoa(summary.TimeToTarget),
			strconv.Itoa(summary.SampleSize),
			strconv.Itoa(summary.Samples),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows, Notes: reportNotes(view)}
}

// comparisonDataset renders one row per intervention; cells without data stay blank.
func comparisonDataset(view *AnalyticsView) export.Dataset {
	headers := []string{"Intervention"}
	matrix := view.Matrix
	if matrix == nil {
		return export.Dataset{Headers: headers, Notes: reportNotes(view)}
	}
	headers = append(headers, matrix.Profiles...)
	rows := make([][]string, 0, len(matrix.Interventions))
	for i, intervention := range matrix.Interventions {
		row := make([]string, len(headers))
		row[0] = intervention
		for j := range matrix.Profiles {
			if cell := matrix.Cells[i][j]; cell.Valid {
				row[j+1] = formatPercent(cell.Value)
			}
		}
		rows = append(rows, row)
	}
	notes := append(reportNotes(view), fmt.Sprintf("Coverage: %s of cells have data", formatPercent(matrix.Coverage())))
	return export.Dataset{Headers: headers, Rows: rows, Notes: notes}
}

func significanceDataset(view *AnalyticsView) export.Dataset {
	headers := []string{"Intervention", "Learning Profile", "Effectiveness", "Students", "P-Value", "Confidence"}
	rows := make([][]string, 0, len(view.Significant))
	for _, sample := range view.Significant {
		rows = append(rows, []string{
			sample.InterventionType,
			sample.LearningProfile,
			formatPercent(sample.Effectiveness),
			strconv.Itoa(sample.SampleSize),
			strconv.FormatFloat(sample.PValue, 'g', 4, 64),
			formatPercent(sample.Confidence),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows, Notes: reportNotes(view)}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}
