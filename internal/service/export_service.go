package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
	"github.com/noah-isme/pnf-horario-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatXLSX = "xlsx"
)

const (
	exportHourHeader = "Hora"
	exportBreakLabel = "Receso"
)

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type titledRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders section grids.
type ExportService struct {
	csv    csvRenderer
	pdf    titledRenderer
	xlsx   titledRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers get defaults.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf, xlsx titledRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(export.WithLandscape())
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter("Horario")
	}
	return &ExportService{csv: csv, pdf: pdf, xlsx: xlsx, logger: logger}
}

// RenderSchedule renders the grid in the requested format.
func (s *ExportService) RenderSchedule(schedule *timetable.Schedule, section models.Section, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatPDF
	}

	dataset := BuildScheduleDataset(schedule)
	title := scheduleTitle(section)

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, title)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render schedule export", zap.String("format", format), zap.Int("section_id", section.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("horario_seccion_%d.%s", section.ID, format),
		ContentType: contentType,
		Data:        payload,
	}, nil
}

// BuildScheduleDataset lays the grid out with one row per block and one
// column per weekday. Anchor cells carry the class label; the remaining
// cells of a span are merged into it.
func BuildScheduleDataset(schedule *timetable.Schedule) export.Dataset {
	headers := append([]string{exportHourHeader}, timetable.DayNames()...)
	blocks := schedule.Blocks()
	rows := make([]map[string]string, len(blocks))
	for i, b := range blocks {
		end := b.Add(1)
		if i+1 < len(blocks) && blocks[i+1] < end {
			end = blocks[i+1]
		}
		rows[i] = map[string]string{exportHourHeader: fmt.Sprintf("%s - %s", b.Clock(), end.Clock())}
		if b.Ignored() {
			for _, day := range timetable.DayNames() {
				rows[i][day] = exportBreakLabel
			}
		}
	}

	rowOf := make(map[timetable.Block]int, len(blocks))
	for i, b := range blocks {
		rowOf[b] = i
	}

	var merges []export.Merge
	for _, span := range schedule.Spans() {
		day := timetable.DayName(span.Day)
		first := -1
		prev := -1
		for _, b := range span.Blocks {
			row, ok := rowOf[b]
			if !ok {
				continue
			}
			if first < 0 || row != prev+1 {
				if first >= 0 && prev > first {
					merges = append(merges, export.Merge{Header: day, FirstRow: first, LastRow: prev})
				}
				first = row
				rows[row][day] = classLabel(span.Class)
			}
			prev = row
		}
		if first >= 0 && prev > first {
			merges = append(merges, export.Merge{Header: day, FirstRow: first, LastRow: prev})
		}
	}

	return export.Dataset{Headers: headers, Rows: rows, Merges: merges}
}

func classLabel(class models.ClassAssignment) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{class.UnitName, class.ProfessorName(), class.ClassroomCode} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Clase %d", class.ID)
	}
	return strings.Join(parts, " | ")
}

func scheduleTitle(section models.Section) string {
	title := fmt.Sprintf("Horario sección %s", section.Value)
	if section.ShiftName != "" {
		title += " - " + section.ShiftName
	}
	return title
}
