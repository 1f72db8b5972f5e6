package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
	"github.com/xuri/excelize/v2"
)

const abandonmentPhrase = "carta abandono"

// Layouts aceitos para FECHA quando a célula não é um serial do Excel.
// Datas ambíguas são lidas mês primeiro; dia primeiro só vale quando o
// primeiro campo passa de 12.
var ingestDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"1/2/2006",
	"01-02-2006",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"20060102",
}

// derivedFields são sempre recalculados; valores vindos da planilha com o
// mesmo nome são descartados.
var derivedFields = []string{
	entity.ColRegion,
	entity.ColIngestDate,
	entity.FieldToday,
	entity.FieldElapsedDays,
	entity.FieldAbandonment,
}

// RegionReporter builds the per-region report. It holds no state between
// calls and can be used from several goroutines.
type RegionReporter struct {
	table    *entity.RegionTable
	renderer repository.WorkbookRenderer
	now      func() time.Time
}

// NewRegionReporter cria um RegionReporter usando o relógio do sistema.
func NewRegionReporter(table *entity.RegionTable, renderer repository.WorkbookRenderer) *RegionReporter {
	return &RegionReporter{
		table:    table,
		renderer: renderer,
		now:      time.Now,
	}
}

// WithClock returns a copy of the reporter reading "today" from now.
func (r *RegionReporter) WithClock(now func() time.Time) *RegionReporter {
	c := *r
	c.now = now
	return &c
}

// Today is the current calendar date at midnight UTC.
func (r *RegionReporter) Today() time.Time {
	return dateOnly(r.now())
}

// BuildReport computes the rows for one region and renders the workbook.
func (r *RegionReporter) BuildReport(records []entity.ClassifiedRecord, region entity.RegionCode) ([]byte, *types.FormatWarning, error) {
	return r.Render(r.Report(records, region, r.Today()))
}

// Report projects records of one region using today as HOY.
func (r *RegionReporter) Report(records []entity.ClassifiedRecord, region entity.RegionCode, today time.Time) entity.RegionReport {
	return entity.RegionReport{
		Region:    region,
		FirstCode: r.table.FirstCode(region),
		Rows:      BuildRows(records, region, today),
	}
}

// Render serializes an already projected report.
func (r *RegionReporter) Render(report entity.RegionReport) ([]byte, *types.FormatWarning, error) {
	data, warning, err := r.renderer.Render(report)
	if err != nil {
		return nil, nil, fmt.Errorf("error rendering %s workbook: %w", report.Region, err)
	}
	return data, warning, nil
}

// BuildRows computes the derived fields of every record and projects them
// onto the fixed output columns.
func BuildRows(records []entity.ClassifiedRecord, region entity.RegionCode, today time.Time) []entity.ReportRow {
	today = dateOnly(today)
	columns := entity.ReportColumns()

	rows := make([]entity.ReportRow, 0, len(records))
	for _, rec := range records {
		fields := deriveFields(rec, region, today)

		values := make([]any, len(columns))
		for i, col := range columns {
			values[i] = fields[col.Source]
		}
		rows = append(rows, entity.ReportRow{Values: values})
	}
	return rows
}

func deriveFields(rec entity.ClassifiedRecord, region entity.RegionCode, today time.Time) map[string]any {
	fields := make(map[string]any, len(rec.Fields)+4)
	for k, v := range rec.Fields {
		if v != "" {
			fields[k] = v
		}
	}

	for _, name := range derivedFields {
		delete(fields, name)
	}

	if region.Assigned() {
		fields[entity.ColRegion] = string(region)
	}

	fields[entity.FieldToday] = today

	if raw, ok := rec.Get(entity.ColIngestDate); ok {
		if ingest, ok := ParseIngestDate(raw); ok {
			fields[entity.ColIngestDate] = ingest
			fields[entity.FieldElapsedDays] = ElapsedDays(today, ingest)
		}
	}

	detail, _ := rec.Get(entity.ColDetail)
	fields[entity.FieldAbandonment] = AbandonmentFlag(detail)

	return fields
}

// ParseIngestDate aceita seriais do Excel e os layouts de texto comuns.
// Valores não reconhecidos devolvem ok=false, nunca erro.
func ParseIngestDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 1 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return dateOnly(t), true
		}
	}

	for _, layout := range ingestDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// ElapsedDays returns whole calendar days from ingest to today. Works on
// Unix seconds because time.Duration overflows past ~292 years.
func ElapsedDays(today, ingest time.Time) int {
	return int((dateOnly(today).Unix() - dateOnly(ingest).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AbandonmentFlag maps the detail text to "Si" or "No".
func AbandonmentFlag(detail string) string {
	if strings.Contains(strings.ToLower(detail), abandonmentPhrase) {
		return entity.AbandonmentYes
	}
	return entity.AbandonmentNo
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReportFilename follows reporte_<region>_actualizado_<first code>.<ext>.
func ReportFilename(region entity.RegionCode, firstCode, ext string) string {
	return fmt.Sprintf("reporte_%s_actualizado_%s.%s", strings.ToLower(string(region)), firstCode, ext)
}
