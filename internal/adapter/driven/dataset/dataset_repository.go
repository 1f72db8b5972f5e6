package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
	"github.com/xuri/excelize/v2"
)

// DatasetRepositoryImpl lê a exportação de ordens de serviço (.xlsx ou .csv).
type DatasetRepositoryImpl struct{}

// NewDatasetRepository cria uma nova implementação do DatasetRepository.
func NewDatasetRepository() repository.DatasetRepository {
	return &DatasetRepositoryImpl{}
}

// LoadFile abre o arquivo e escolhe o decodificador pela extensão.
func (r *DatasetRepositoryImpl) LoadFile(filePath string, sheet string) (entity.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("error opening input file: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".xlsx", ".xlsm":
		return r.LoadXLSX(file, sheet)
	case ".csv", ".txt":
		return r.LoadCSV(file)
	default:
		return entity.Dataset{}, fmt.Errorf("%w: %s", types.ErrUnsupportedInput, ext)
	}
}

// LoadXLSX reads the given sheet (the first one when empty). Cell values
// are taken raw so date cells arrive as Excel serial numbers.
func (r *DatasetRepositoryImpl) LoadXLSX(reader io.Reader, sheet string) (entity.Dataset, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return buildDataset(rows)
}

// LoadCSV reads a delimited export. The delimiter (comma or semicolon) is
// taken from whichever appears more often in the header line.
func (r *DatasetRepositoryImpl) LoadCSV(reader io.Reader) (entity.Dataset, error) {
	br := bufio.NewReader(reader)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return entity.Dataset{}, fmt.Errorf("error reading CSV file: %w", err)
	}

	cr := csv.NewReader(br)
	cr.Comma = detectDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("error parsing CSV file: %w", err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	return buildDataset(rows)
}

func detectDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// buildDataset normaliza o cabeçalho e descarta linhas totalmente vazias.
func buildDataset(rows [][]string) (entity.Dataset, error) {
	if len(rows) == 0 {
		return entity.Dataset{}, types.ErrEmptyInput
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = entity.NormalizeColumn(h)
	}

	ds := entity.Dataset{
		Columns: headers,
		Records: make([]entity.RawRecord, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		ds.Records = append(ds.Records, entity.NewRawRecord(headers, row))
	}

	return ds, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
