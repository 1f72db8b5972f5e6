package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// WriteXLSX grava o workbook já renderizado.
func (r *ExportRepositoryImpl) WriteXLSX(data []byte, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "xlsx")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(outputFilename, data, 0644); err != nil {
		return "", fmt.Errorf("error writing XLSX file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToCSV(report entity.RegionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(entity.ReportHeaders()); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, row := range report.Rows {
		record := make([]string, len(row.Values))
		for i, v := range row.Values {
			record[i] = entity.FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

type jsonRow struct {
	Fields map[string]any `json:"fields"`
	Band   string         `json:"band"`
}

type jsonReport struct {
	RunID       string    `json:"run_id,omitempty"`
	Region      string    `json:"region"`
	FirstCode   string    `json:"first_code"`
	GeneratedAt string    `json:"generated_at"`
	Columns     []string  `json:"columns"`
	Rows        []jsonRow `json:"rows"`
}

func (r *ExportRepositoryImpl) ExportToJSON(report entity.RegionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	headers := entity.ReportHeaders()
	out := jsonReport{
		RunID:       report.RunID,
		Region:      string(report.Region),
		FirstCode:   report.FirstCode,
		GeneratedAt: r.now().Format(time.RFC3339),
		Columns:     headers,
		Rows:        make([]jsonRow, 0, len(report.Rows)),
	}

	for _, row := range report.Rows {
		fields := make(map[string]any, len(headers))
		for i, h := range headers {
			var v any
			if i < len(row.Values) {
				v = row.Values[i]
			}
			switch val := v.(type) {
			case time.Time:
				fields[h] = val.Format(entity.DateLayout)
			default:
				fields[h] = val
			}
		}
		out.Rows = append(out.Rows, jsonRow{Fields: fields, Band: row.Band().String()})
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF desenha o relatório em A4 paisagem, com a célula DIAS
// preenchida na cor da faixa do semáforo.
func (r *ExportRepositoryImpl) ExportToPDF(report entity.RegionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headers := entity.ReportHeaders()
	widths := pdfColumnWidths(headers, report.Rows, 277)
	daysIdx := indexOf(headers, entity.HeaderElapsedDays)

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 6)
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		for i, h := range headers {
			pdf.CellFormat(widths[i], 6, tr(fitText(pdf, h, widths[i])), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 6)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Reporte %s (%d regs.)", report.Region, len(report.Rows))), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generado: %s", r.now().Format("2006-01-02 15:04"))), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		drawHeader()
	})

	pdf.AddPage()

	for _, row := range report.Rows {
		band := row.Band()
		for i := range headers {
			var v any
			if i < len(row.Values) {
				v = row.Values[i]
			}
			fill := false
			if i == daysIdx {
				if cr, cg, cb, ok := band.RGB(); ok {
					pdf.SetFillColor(cr, cg, cb)
					fill = true
				}
			}
			text := fitText(pdf, entity.FormatValue(v), widths[i])
			pdf.CellFormat(widths[i], 5, tr(text), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error creating PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// pdfColumnWidths distribui a largura útil proporcionalmente ao maior
// conteúdo de cada coluna, limitado a 40 caracteres.
func pdfColumnWidths(headers []string, rows []entity.ReportRow, total float64) []float64 {
	weights := make([]float64, len(headers))
	sum := 0.0
	for i, h := range headers {
		n := utf8.RuneCountInString(h)
		for _, row := range rows {
			if i < len(row.Values) {
				if l := utf8.RuneCountInString(entity.FormatValue(row.Values[i])); l > n {
					n = l
				}
			}
		}
		if n > 40 {
			n = 40
		}
		weights[i] = float64(n)
		sum += weights[i]
	}

	widths := make([]float64, len(headers))
	for i, w := range weights {
		widths[i] = total * w / sum
	}
	return widths
}

// fitText corta o texto até caber na largura da célula.
func fitText(pdf *gofpdf.Fpdf, text string, width float64) string {
	text = strings.ReplaceAll(text, "\n", " ")
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// --- Funções Auxiliares ---

// generateFilename monta o caminho final e garante que o diretório exista.
// O nome base já segue a convenção reporte_<região>_actualizado_<código>.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	filename := fmt.Sprintf("%s.%s", strings.TrimSuffix(base, "."+ext), ext)
	return filepath.Join(dir, filename), nil
}
