package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName é o nome da única aba do relatório.
const DefaultSheetName = "Sheet1"

// Excel não aceita colunas mais largas que isso.
const maxColumnWidth = 255

const dateNumFmt = "yyyy-mm-dd"

// XLSXRenderer implementa o WorkbookRenderer com excelize.
type XLSXRenderer struct{}

// NewXLSXRenderer cria um novo XLSXRenderer.
func NewXLSXRenderer() repository.WorkbookRenderer {
	return &XLSXRenderer{}
}

// Render escreve o relatório numa aba e aplica a formatação em uma
// segunda passada sobre o conteúdo já gravado.
func (x *XLSXRenderer) Render(report entity.RegionReport) ([]byte, *types.FormatWarning, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := writeSheet(f, sheet, entity.ReportHeaders(), report.Rows); err != nil {
		return nil, nil, err
	}

	if err := AutoSizeColumns(f, sheet); err != nil {
		return nil, nil, err
	}

	warning, err := ApplyTrafficLight(f, sheet)
	if err != nil {
		return nil, nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), warning, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows []entity.ReportRow) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	numFmt := dateNumFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("error creating date style: %w", err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("error writing header row: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("error styling header row: %w", err)
	}

	for r, row := range rows {
		for c, value := range row.Values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("error writing cell %s: %w", cell, err)
			}
			if _, ok := value.(time.Time); ok {
				if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
					return fmt.Errorf("error styling cell %s: %w", cell, err)
				}
			}
		}
	}
	return nil
}

// AutoSizeColumns sets every column to the length of its longest displayed
// value plus two. Columns without any value keep the default width.
func AutoSizeColumns(f *excelize.File, sheet string) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("error reading sheet %q: %w", sheet, err)
	}

	maxLen := map[int]int{}
	for _, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			if n := utf8.RuneCountInString(value); n > maxLen[c] {
				maxLen[c] = n
			}
		}
	}

	for c, n := range maxLen {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := float64(n + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("error sizing column %s: %w", col, err)
		}
	}
	return nil
}

// ApplyTrafficLight colore a célula DIAS de cada linha conforme a faixa.
// Sem as colunas DIAS ou CARTA ABANDONO nada é colorido e um aviso é
// devolvido.
func ApplyTrafficLight(f *excelize.File, sheet string) (*types.FormatWarning, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheet, err)
	}

	daysCol, abandonCol := -1, -1
	if len(rows) > 0 {
		for c, h := range rows[0] {
			switch h {
			case entity.HeaderElapsedDays:
				daysCol = c
			case entity.HeaderAbandonment:
				abandonCol = c
			}
		}
	}

	var missing []string
	if daysCol < 0 {
		missing = append(missing, entity.HeaderElapsedDays)
	}
	if abandonCol < 0 {
		missing = append(missing, entity.HeaderAbandonment)
	}
	if len(missing) > 0 {
		return &types.FormatWarning{Sheet: sheet, Missing: missing}, nil
	}

	styles := map[entity.ColorBand]int{}
	for r := 1; r < len(rows); r++ {
		band := entity.ClassifyBand(cellAt(rows[r], abandonCol), cellAt(rows[r], daysCol))
		if band == entity.BandNone {
			continue
		}

		styleID, ok := styles[band]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{band.Color()}},
			})
			if err != nil {
				return nil, fmt.Errorf("error creating %s fill: %w", band, err)
			}
			styles[band] = styleID
		}

		cell, err := excelize.CoordinatesToCellName(daysCol+1, r+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return nil, fmt.Errorf("error filling cell %s: %w", cell, err)
		}
	}
	return nil, nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
