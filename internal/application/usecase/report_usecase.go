package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/internal/domain/repository"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
)

// ErrInputNotRead marca falhas de leitura já registradas no console.
var ErrInputNotRead = errors.New("input file could not be read")

// DefaultWorkers limita quantas regiões são renderizadas em paralelo.
const DefaultWorkers = 4

const (
	reportTypeXLSX = "xlsx"
	reportTypeCSV  = "csv"
	reportTypeJSON = "json"
	reportTypePDF  = "pdf"
)

var contentTypes = map[string]string{
	reportTypeXLSX: entity.XLSXMimeType,
	reportTypeCSV:  "text/csv",
	reportTypeJSON: "application/json",
	reportTypePDF:  "application/pdf",
}

// RegionResult é o resultado da geração de uma região.
type RegionResult struct {
	Region  entity.RegionCode
	Records int
	Bands   map[entity.ColorBand]int
	Files   []string
	Warning *types.FormatWarning
	Err     error

	report   entity.RegionReport
	workbook []byte
}

// ReportUseCase handles the upload → classify → per-region report flow.
type ReportUseCase struct {
	datasetRepo repository.DatasetRepository
	exportRepo  repository.ExportRepository
	configRepo  repository.ConfigRepository
	storageRepo repository.StorageRepository
	reporter    *RegionReporter
	table       *entity.RegionTable
	console     types.ConsoleInterface
	newRunID    func() string
}

// NewReportUseCase creates a new report use case.
func NewReportUseCase(
	datasetRepo repository.DatasetRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	storageRepo repository.StorageRepository,
	reporter *RegionReporter,
	table *entity.RegionTable,
	console types.ConsoleInterface,
) *ReportUseCase {
	return &ReportUseCase{
		datasetRepo: datasetRepo,
		exportRepo:  exportRepo,
		configRepo:  configRepo,
		storageRepo: storageRepo,
		reporter:    reporter,
		table:       table,
		console:     console,
		newRunID:    func() string { return uuid.New().String() },
	}
}

// ResolveArgs mescla variáveis de ambiente e o arquivo de configuração (se
// houver) com os argumentos da CLI e valida o resultado.
// Precedência: CLI, depois ambiente, depois arquivo.
func (uc *ReportUseCase) ResolveArgs(args *types.CLIArgs) (*types.CLIArgs, error) {
	resolved := *args

	env, err := uc.configRepo.LoadEnv()
	if err != nil {
		return nil, err
	}
	MergeConfig(&resolved, env)

	if args.ConfigFile != "" {
		cfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, err
		}
		MergeConfig(&resolved, cfg)
		uc.console.LogInfo("Loaded configuration from %s", args.ConfigFile)
	}

	if len(resolved.ReportType) == 0 {
		resolved.ReportType = []string{reportTypeXLSX}
	}
	resolved.ReportType = normalizeReportTypes(resolved.ReportType)
	if resolved.Workers == 0 {
		resolved.Workers = DefaultWorkers
	}

	if err := uc.configRepo.Validate(&types.Config{
		Input:      resolved.Input,
		Sheet:      resolved.Sheet,
		ReportType: resolved.ReportType,
		Dir:        resolved.Dir,
		Workers:    resolved.Workers,
		S3Bucket:   resolved.S3Bucket,
		S3Prefix:   resolved.S3Prefix,
		Profile:    resolved.Profile,
	}); err != nil {
		return nil, err
	}

	if resolved.Input == "" {
		return nil, types.ErrNoInputFile
	}

	return &resolved, nil
}

// MergeConfig fills every empty CLI value from the configuration file.
func MergeConfig(args *types.CLIArgs, cfg *types.Config) {
	if cfg == nil {
		return
	}
	if args.Input == "" {
		args.Input = cfg.Input
	}
	if args.Sheet == "" {
		args.Sheet = cfg.Sheet
	}
	if len(args.ReportType) == 0 {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" {
		args.Dir = cfg.Dir
	}
	if args.Workers == 0 {
		args.Workers = cfg.Workers
	}
	if args.S3Bucket == "" {
		args.S3Bucket = cfg.S3Bucket
	}
	if args.S3Prefix == "" {
		args.S3Prefix = cfg.S3Prefix
	}
	if args.Profile == "" {
		args.Profile = cfg.Profile
	}
}

// normalizeReportTypes garante xlsx sempre presente e remove duplicados.
func normalizeReportTypes(in []string) []string {
	seen := map[string]bool{reportTypeXLSX: true}
	out := []string{reportTypeXLSX}
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// RunReports executa o fluxo completo para um arquivo de entrada.
func (uc *ReportUseCase) RunReports(ctx context.Context, args *types.CLIArgs) ([]RegionResult, error) {
	resolved, err := uc.ResolveArgs(args)
	if err != nil {
		return nil, err
	}

	status := uc.console.Status(fmt.Sprintf("Reading %s...", pterm.FgCyan.Sprint(filepath.Base(resolved.Input))))
	ds, err := uc.datasetRepo.LoadFile(resolved.Input, resolved.Sheet)
	if err != nil {
		status.Stop()
		uc.console.LogError("Could not read the input file: %s", err)
		return nil, fmt.Errorf("%w: %w", ErrInputNotRead, err)
	}

	status.Update(fmt.Sprintf("Classifying %d rows...", len(ds.Records)))
	pending, err := ClassifyAndFilter(ds, uc.table)
	status.Stop()
	if err != nil {
		var schemaErr *types.SchemaError
		if errors.As(err, &schemaErr) {
			uc.console.LogError("The file must contain the columns %s. Missing: %s",
				strings.Join([]string{entity.ColCostCenter, entity.ColStatus}, ", "),
				strings.Join(schemaErr.Missing, ", "))
		}
		return nil, err
	}
	uc.console.LogSuccess("File processed: %d rows read, %d pending", len(ds.Records), len(pending))

	results, err := uc.BuildRegionReports(ctx, pending, resolved.Workers)
	if err != nil {
		return nil, err
	}
	runID := uc.newRunID()
	for i := range results {
		results[i].report.RunID = runID
	}

	if len(results) == 0 {
		uc.console.LogInfo("The file was processed, but no pending records were found for any region. No reports were generated.")
		return nil, nil
	}

	failed := uc.exportResults(ctx, results, resolved)
	uc.displaySummary(runID, results)

	if failed {
		return results, types.ErrSomeReportsFailed
	}
	return results, nil
}

// BuildRegionReports renderiza em paralelo uma pasta de trabalho por região
// não vazia. Todas as regiões usam a mesma data HOY. Falhas ficam no
// RegionResult e não interrompem as demais regiões.
func (uc *ReportUseCase) BuildRegionReports(ctx context.Context, pending []entity.ClassifiedRecord, workers int) ([]RegionResult, error) {
	parts := PartitionByRegion(pending)
	today := uc.reporter.Today()

	var results []RegionResult
	for _, region := range uc.table.Regions() {
		if len(parts[region]) == 0 {
			continue
		}
		results = append(results, RegionResult{Region: region, Records: len(parts[region])})
	}

	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.report = uc.reporter.Report(parts[res.Region], res.Region, today)
			res.Bands = countBands(res.report.Rows)
			res.workbook, res.Warning, res.Err = uc.reporter.Render(res.report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func countBands(rows []entity.ReportRow) map[entity.ColorBand]int {
	bands := make(map[entity.ColorBand]int)
	for _, row := range rows {
		bands[row.Band()]++
	}
	return bands
}

// exportResults grava os artefatos em ordem de região e devolve true se
// alguma região falhou.
func (uc *ReportUseCase) exportResults(ctx context.Context, results []RegionResult, args *types.CLIArgs) bool {
	failed := false

	if args.S3Bucket != "" {
		if accountID, err := uc.storageRepo.GetAccountID(ctx, args.Profile); err != nil {
			uc.console.LogWarning("Could not resolve AWS account: %s", err)
		} else {
			uc.console.LogInfo("Publishing reports to s3://%s using account %s", args.S3Bucket, accountID)
		}
	}

	progress := uc.console.ProgressWithTotal(len(results))
	defer progress.Stop()

	for i := range results {
		res := &results[i]
		progress.Increment()

		if res.Err != nil {
			uc.console.LogError("Failed to generate report for %s: %s", res.Region, res.Err)
			failed = true
			continue
		}
		if res.Warning != nil {
			uc.console.LogWarning("%s: %s", res.Region, res.Warning)
		}

		base := strings.TrimSuffix(ReportFilename(res.Region, res.report.FirstCode, reportTypeXLSX), "."+reportTypeXLSX)

		for _, reportType := range args.ReportType {
			path, err := uc.exportOne(reportType, res, base, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export %s report for %s: %s", strings.ToUpper(reportType), res.Region, err)
				res.Err = err
				failed = true
				continue
			}
			res.Files = append(res.Files, path)
			uc.console.LogSuccess("Report %s (%d regs.) saved to %s", res.Region, res.Records, path)

			if args.S3Bucket != "" {
				key := objectKey(args.S3Prefix, filepath.Base(path))
				uri, err := uc.storageRepo.Upload(ctx, args.Profile, args.S3Bucket, key, path, contentTypes[reportType])
				if err != nil {
					uc.console.LogError("Failed to upload %s: %s", filepath.Base(path), err)
					res.Err = err
					failed = true
					continue
				}
				uc.console.LogSuccess("Uploaded %s", uri)
			}
		}

		res.workbook = nil
	}

	return failed
}

func (uc *ReportUseCase) exportOne(reportType string, res *RegionResult, base, dir string) (string, error) {
	switch reportType {
	case reportTypeXLSX:
		return uc.exportRepo.WriteXLSX(res.workbook, base, dir)
	case reportTypeCSV:
		return uc.exportRepo.ExportToCSV(res.report, base, dir)
	case reportTypeJSON:
		return uc.exportRepo.ExportToJSON(res.report, base, dir)
	case reportTypePDF:
		return uc.exportRepo.ExportToPDF(res.report, base, dir)
	default:
		return "", fmt.Errorf("unsupported report type: %s", reportType)
	}
}

func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// displaySummary mostra uma tabela com a contagem de cada faixa por região.
func (uc *ReportUseCase) displaySummary(runID string, results []RegionResult) {
	table := uc.console.CreateTable()
	table.AddColumn("Region")
	table.AddColumn("Records")
	table.AddColumn("1-10")
	table.AddColumn("11-20")
	table.AddColumn("21-31")
	table.AddColumn("32+")
	table.AddColumn("Abandono")
	table.AddColumn("No date")
	table.AddColumn("Files")

	for _, res := range results {
		files := make([]string, 0, len(res.Files))
		for _, f := range res.Files {
			files = append(files, filepath.Base(f))
		}
		fileText := strings.Join(files, "\n")
		if res.Err != nil {
			fileText = pterm.FgRed.Sprint("failed")
		}

		table.AddRow(
			pterm.FgMagenta.Sprint(res.Region),
			res.Records,
			pterm.FgGreen.Sprint(res.Bands[entity.BandGreen]),
			pterm.FgLightYellow.Sprint(res.Bands[entity.BandYellow]),
			pterm.FgRed.Sprint(res.Bands[entity.BandRed]),
			pterm.FgGray.Sprint(res.Bands[entity.BandGray]),
			pterm.FgYellow.Sprint(res.Bands[entity.BandOrange]),
			res.Bands[entity.BandNone],
			fileText,
		)
	}

	uc.console.Println()
	uc.console.Print(table.Render())
	uc.console.Println(pterm.FgGray.Sprintf("Run %s generated at %s", runID, uc.reporter.now().Format("2006-01-02 15:04:05")))
}
