package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoInputFile          = errors.New("no input file given. Use --input or set 'input' in the config file")
	ErrUnsupportedInput     = errors.New("unsupported input file format")
	ErrEmptyInput           = errors.New("input file has no header row")
	ErrSomeReportsFailed    = errors.New("one or more region reports could not be generated")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// SchemaError indica que colunas obrigatórias não existem no arquivo.
// É fatal: nenhum relatório é gerado.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input is missing required column(s): %s", strings.Join(e.Missing, ", "))
}

// FormatWarning reports a sheet that could not receive the traffic-light
// formatting. The workbook is still produced.
type FormatWarning struct {
	Sheet   string
	Missing []string
}

func (w *FormatWarning) Error() string {
	return fmt.Sprintf("sheet %q has no %s column(s); traffic-light formatting skipped",
		w.Sheet, strings.Join(w.Missing, "/"))
}
