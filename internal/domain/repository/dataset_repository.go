package repository

import (
	"io"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
)

// DatasetRepository decodes an uploaded ticket export into a Dataset.
type DatasetRepository interface {
	LoadFile(filePath string, sheet string) (entity.Dataset, error)
	LoadXLSX(r io.Reader, sheet string) (entity.Dataset, error)
	LoadCSV(r io.Reader) (entity.Dataset, error)
}
