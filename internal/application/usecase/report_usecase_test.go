package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/diillson/ticket-region-reports/internal/adapter/driven/config"
	datasetrepo "github.com/diillson/ticket-region-reports/internal/adapter/driven/dataset"
	"github.com/diillson/ticket-region-reports/internal/adapter/driven/export"
	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
)

// --- fakes ---

type fakeConsole struct {
	mu       sync.Mutex
	infos    []string
	warnings []string
	errs     []string
	success  []string
	statuses []string
}

func (c *fakeConsole) Print(a ...interface{})                 {}
func (c *fakeConsole) Printf(format string, a ...interface{}) {}
func (c *fakeConsole) Println(a ...interface{})               {}

func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success = append(c.success, fmt.Sprintf(format, a...))
}

func (c *fakeConsole) Status(message string) types.StatusHandle {
	c.record(message)
	return &statusRecorder{console: c}
}

func (c *fakeConsole) record(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, message)
}

type statusRecorder struct{ console *fakeConsole }

func (s *statusRecorder) Update(message string) { s.console.record(message) }
func (s *statusRecorder) Stop()                 {}

func (c *fakeConsole) ProgressWithTotal(total int) types.ProgressHandle { return nopHandle{} }
func (c *fakeConsole) CreateTable() types.TableInterface                { return &nopTable{} }

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Increment()    {}
func (nopHandle) Stop()         {}

type nopTable struct{ rows int }

func (t *nopTable) AddColumn(name string, options ...interface{}) {}
func (t *nopTable) AddRow(cells ...interface{})                   { t.rows++ }
func (t *nopTable) Render() string                                { return "" }

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (s *fakeStorage) GetAccountID(ctx context.Context, profile string) (string, error) {
	return "123456789012", nil
}

func (s *fakeStorage) Upload(ctx context.Context, profile, bucket, key, localPath, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "s3://" + bucket + "/" + key, nil
}

// failingRenderer falha para uma região e delega as demais.
type failingRenderer struct {
	next   repository.WorkbookRenderer
	region entity.RegionCode
}

func (r failingRenderer) Render(report entity.RegionReport) ([]byte, *types.FormatWarning, error) {
	if report.Region == r.region {
		return nil, nil, errors.New("disk full")
	}
	return r.next.Render(report)
}

// --- helpers ---

func newTestUseCase(renderer repository.WorkbookRenderer, storage repository.StorageRepository) (*ReportUseCase, *fakeConsole) {
	console := &fakeConsole{}
	table := entity.DefaultRegionTable()
	reporter := NewRegionReporter(table, renderer).WithClock(func() time.Time {
		return time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	})
	if storage == nil {
		storage = &fakeStorage{}
	}
	uc := NewReportUseCase(
		datasetrepo.NewDatasetRepository(),
		export.NewExportRepository(),
		config.NewConfigRepository(),
		storage,
		reporter,
		table,
		console,
	)
	return uc, console
}

func writeUpload(t *testing.T, dir string, header []interface{}, rows ...[]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(dir, "CRTMPCONSULTA.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func fillOf(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	id, err := f.GetCellStyle(export.DefaultSheetName, cell)
	require.NoError(t, err)
	if id == 0 {
		return ""
	}
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	if len(style.Fill.Color) == 0 {
		return ""
	}
	c := strings.ToUpper(style.Fill.Color[0])
	if len(c) == 8 {
		c = c[2:]
	}
	return c
}

func assertWidthsMatchContent(t *testing.T, f *excelize.File) {
	t.Helper()
	rows, err := f.GetRows(export.DefaultSheetName)
	require.NoError(t, err)

	maxLen := map[int]int{}
	for _, r := range rows {
		for c, v := range r {
			if n := len([]rune(v)); v != "" && n > maxLen[c] {
				maxLen[c] = n
			}
		}
	}
	for c, n := range maxLen {
		col, _ := excelize.ColumnNumberToName(c + 1)
		w, err := f.GetColWidth(export.DefaultSheetName, col)
		require.NoError(t, err)
		assert.Equal(t, float64(n+2), w, "column %s", col)
	}
}

var uploadHeader = []interface{}{"CCOSER", "ESTADONOMB", "FECHA", "DETALLE_AC", "CLIENTE", "NUM_OS"}

// --- tests ---

func TestRunReports_EndToEnd(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, uploadHeader,
		[]interface{}{"10101", "Pendiente", "2026-10-08", "revisión de compresor", "Pedro Gómez", "OS-1"},
		[]interface{}{"10201", "Pendiente", "2026-10-14", "Se envía carta abandono", "Rosa Díaz", "OS-2"},
		[]interface{}{"99999", "Pendiente", "2026-10-01", "", "Sin Región", "OS-3"},
	)

	uc, console := newTestUseCase(export.NewXLSXRenderer(), nil)
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: input, Dir: outDir})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, console.errs)

	// Ordem da tabela de regiões: BORDO antes de POPAYAN.
	assert.Equal(t, entity.RegionBordo, results[0].Region)
	assert.Equal(t, entity.RegionPopayan, results[1].Region)

	assert.Equal(t, []string{
		"reporte_bordo_actualizado_10201.xlsx",
		"reporte_popayan_actualizado_10101.xlsx",
	}, listFiles(t, outDir))

	popayan, err := excelize.OpenFile(filepath.Join(outDir, "reporte_popayan_actualizado_10101.xlsx"))
	require.NoError(t, err)
	defer popayan.Close()

	rows, err := popayan.GetRows(export.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, entity.ReportHeaders(), rows[0])
	assert.Equal(t, "POPAYAN", rows[1][0])
	assert.Equal(t, "11", rows[1][3])
	assert.Equal(t, "No", rows[1][4])
	assert.Equal(t, "BFFF00", fillOf(t, popayan, "D2"))
	assertWidthsMatchContent(t, popayan)

	bordo, err := excelize.OpenFile(filepath.Join(outDir, "reporte_bordo_actualizado_10201.xlsx"))
	require.NoError(t, err)
	defer bordo.Close()

	rows, err = bordo.GetRows(export.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "5", rows[1][3])
	assert.Equal(t, "Si", rows[1][4])
	assert.Equal(t, "F4B084", fillOf(t, bordo, "D2"))
	assertWidthsMatchContent(t, bordo)

	require.Len(t, console.statuses, 2)
	assert.Contains(t, console.statuses[0], "CRTMPCONSULTA.xlsx")
	assert.Equal(t, "Classifying 3 rows...", console.statuses[1])

	for _, f := range []*excelize.File{popayan, bordo} {
		all, _ := f.GetRows(export.DefaultSheetName)
		for _, r := range all {
			assert.NotContains(t, r, "OS-3")
		}
	}
}

func TestRunReports_SchemaErrorProducesNothing(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, []interface{}{"CCOSER", "FECHA"}, []interface{}{"10101", "2026-10-08"})

	uc, console := newTestUseCase(export.NewXLSXRenderer(), nil)
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: input, Dir: outDir})

	var schemaErr *types.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"ESTADONOMB"}, schemaErr.Missing)
	assert.Nil(t, results)
	assert.Empty(t, listFiles(t, outDir))
	require.Len(t, console.errs, 1)
	assert.Contains(t, console.errs[0], "ESTADONOMB")
}

func TestRunReports_ExcelDateCells(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, uploadHeader,
		[]interface{}{30101, "PENDIENTE", time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC), "", "Ana", "OS-9"},
	)

	uc, _ := newTestUseCase(export.NewXLSXRenderer(), nil)
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: input, Dir: outDir})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, entity.RegionPasto, results[0].Region)

	f, err := excelize.OpenFile(filepath.Join(outDir, "reporte_pasto_actualizado_30101.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "11", rows[1][3])
	assert.Equal(t, "2026-10-19", rows[1][5])
	assert.Equal(t, "2026-10-08", rows[1][6])
	assert.Equal(t, "BFFF00", fillOf(t, f, "D2"))
}

func TestRunReports_UnreadableInput(t *testing.T) {
	outDir := t.TempDir()
	missing := filepath.Join(t.TempDir(), "no-existe.xlsx")

	uc, console := newTestUseCase(export.NewXLSXRenderer(), nil)
	_, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: missing, Dir: outDir})

	assert.ErrorIs(t, err, ErrInputNotRead)
	require.Len(t, console.errs, 1)
	assert.Contains(t, console.errs[0], "Could not read the input file")
	assert.Empty(t, listFiles(t, outDir))
}

func TestRunReports_NoPendingRecords(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, uploadHeader,
		[]interface{}{"10101", "CERRADO", "2026-10-08", "", "A", "OS-1"},
		[]interface{}{"88888", "PENDIENTE", "2026-10-08", "", "B", "OS-2"},
	)

	uc, console := newTestUseCase(export.NewXLSXRenderer(), nil)
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: input, Dir: outDir})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, listFiles(t, outDir))

	require.NotEmpty(t, console.infos)
	assert.Contains(t, console.infos[len(console.infos)-1], "no pending records")
}

func TestRunReports_RegionFailureDoesNotStopOthers(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, uploadHeader,
		[]interface{}{"10201", "PENDIENTE", "2026-10-08", "", "A", "OS-1"},
		[]interface{}{"20101", "PENDIENTE", "2026-10-08", "", "B", "OS-2"},
	)

	renderer := failingRenderer{next: export.NewXLSXRenderer(), region: entity.RegionBordo}
	uc, console := newTestUseCase(renderer, nil)
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{Input: input, Dir: outDir})

	assert.ErrorIs(t, err, types.ErrSomeReportsFailed)
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, []string{"reporte_valle_actualizado_20101.xlsx"}, listFiles(t, outDir))
	require.Len(t, console.errs, 1)
	assert.Contains(t, console.errs[0], "BORDO")
}

func TestRunReports_ExtraTypesAndUpload(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	input := writeUpload(t, inDir, uploadHeader,
		[]interface{}{"70102", "pendiente ", "2026-09-01", "", "A", "OS-1"},
	)

	storage := &fakeStorage{}
	uc, _ := newTestUseCase(export.NewXLSXRenderer(), storage)
	uc.newRunID = func() string { return "run-0001" }
	results, err := uc.RunReports(context.Background(), &types.CLIArgs{
		Input:      input,
		Dir:        outDir,
		ReportType: []string{"csv", "json", "pdf", "csv"},
		S3Bucket:   "reportes",
		S3Prefix:   "/2026/10/",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[entity.ColorBand]int{entity.BandGray: 1}, results[0].Bands)

	assert.Equal(t, []string{
		"reporte_pitalito_actualizado_70101.csv",
		"reporte_pitalito_actualizado_70101.json",
		"reporte_pitalito_actualizado_70101.pdf",
		"reporte_pitalito_actualizado_70101.xlsx",
	}, listFiles(t, outDir))

	sort.Strings(storage.keys)
	assert.Equal(t, []string{
		"2026/10/reporte_pitalito_actualizado_70101.csv",
		"2026/10/reporte_pitalito_actualizado_70101.json",
		"2026/10/reporte_pitalito_actualizado_70101.pdf",
		"2026/10/reporte_pitalito_actualizado_70101.xlsx",
	}, storage.keys)

	data, err := os.ReadFile(filepath.Join(outDir, "reporte_pitalito_actualizado_70101.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id": "run-0001"`)
}

func TestResolveArgs(t *testing.T) {
	uc, _ := newTestUseCase(export.NewXLSXRenderer(), nil)

	_, err := uc.ResolveArgs(&types.CLIArgs{})
	assert.ErrorIs(t, err, types.ErrNoInputFile)

	_, err = uc.ResolveArgs(&types.CLIArgs{Input: "x.xlsx", ReportType: []string{"docx"}})
	assert.ErrorIs(t, err, types.ErrInvalidConfiguration)

	cfgPath := filepath.Join(t.TempDir(), "reportes.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: consulta.xlsx\nreport_type: [pdf]\nworkers: 2\ndir: /tmp/salida\n"), 0o644))

	resolved, err := uc.ResolveArgs(&types.CLIArgs{ConfigFile: cfgPath, Dir: "/tmp/cli"})
	require.NoError(t, err)
	assert.Equal(t, "consulta.xlsx", resolved.Input)
	assert.Equal(t, []string{"xlsx", "pdf"}, resolved.ReportType)
	assert.Equal(t, 2, resolved.Workers)
	assert.Equal(t, "/tmp/cli", resolved.Dir)
}

func TestResolveArgs_EnvironmentSitsBetweenFlagsAndFile(t *testing.T) {
	uc, _ := newTestUseCase(export.NewXLSXRenderer(), nil)

	cfgPath := filepath.Join(t.TempDir(), "reportes.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input = \"archivo.xlsx\"\nworkers = 2\ns3_bucket = \"desde-archivo\"\n"), 0o644))

	t.Setenv("TICKET_REPORTS_WORKERS", "6")
	t.Setenv("TICKET_REPORTS_S3_BUCKET", "desde-env")
	t.Setenv("TICKET_REPORTS_REPORT_TYPE", "json,csv")

	resolved, err := uc.ResolveArgs(&types.CLIArgs{ConfigFile: cfgPath, S3Bucket: "desde-flag"})
	require.NoError(t, err)
	assert.Equal(t, "archivo.xlsx", resolved.Input)
	assert.Equal(t, 6, resolved.Workers)
	assert.Equal(t, "desde-flag", resolved.S3Bucket)
	assert.Equal(t, []string{"xlsx", "json", "csv"}, resolved.ReportType)
}

func TestBuildRegionReports_SharedToday(t *testing.T) {
	uc, _ := newTestUseCase(export.NewXLSXRenderer(), nil)

	pending := []entity.ClassifiedRecord{
		classified(entity.RegionPasto, map[string]string{"CCOSER": "30101", "FECHA": "2026-10-09"}),
		classified(entity.RegionTuquerres, map[string]string{"CCOSER": "30301", "FECHA": "2026-10-09"}),
		classified(entity.RegionNone, map[string]string{"CCOSER": "1"}),
	}

	results, err := uc.BuildRegionReports(context.Background(), pending, 1)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.NotEmpty(t, res.workbook)
		assert.Equal(t, 10, res.report.Rows[0].Value("DIAS"))
		assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), res.report.Rows[0].Value("HOY"))
	}
}
