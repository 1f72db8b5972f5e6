package repository

import (
	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
)

// ExportRepository grava os artefatos de cada região no disco.
// Todos os métodos devolvem o caminho absoluto do arquivo criado.
type ExportRepository interface {
	WriteXLSX(data []byte, filename, outputDir string) (string, error)
	ExportToCSV(report entity.RegionReport, filename, outputDir string) (string, error)
	ExportToJSON(report entity.RegionReport, filename, outputDir string) (string, error)
	ExportToPDF(report entity.RegionReport, filename, outputDir string) (string, error)
}

// WorkbookRenderer serializes a region report into a formatted workbook.
// A non-nil warning means the workbook was produced without the
// traffic-light fills.
type WorkbookRenderer interface {
	Render(report entity.RegionReport) ([]byte, *types.FormatWarning, error)
}
