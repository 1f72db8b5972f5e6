package cli

import (
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/diillson/ticket-region-reports/pkg/version"

	"github.com/diillson/ticket-region-reports/internal/application/usecase"
	"github.com/diillson/ticket-region-reports/internal/shared/types"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd       *cobra.Command
	reportUseCase *usecase.ReportUseCase
	version       string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	rootCmd := &cobra.Command{
		Use:   "ticket-reports",
		Short: "Split a pending-ticket export into one colour-coded workbook per region",
		Long: `Reads a service-ticket export (XLSX or CSV), keeps the PENDIENTE tickets,
classifies them by cost-center code into the fixed regions and writes one
workbook per region with the DIAS traffic light applied.`,
		Version:       version.FormatVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "ticket-reports version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("input", "i", "", "Path to the ticket export (.xlsx, .xlsm, .csv)")
	rootCmd.PersistentFlags().String("sheet", "", "Worksheet to read from an XLSX input (default: first sheet)")
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the region reports (default: current directory)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Extra report types besides xlsx: csv, json, pdf")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "Regions rendered in parallel (default: 4)")
	rootCmd.PersistentFlags().String("s3-bucket", "", "Upload generated reports to this S3 bucket")
	rootCmd.PersistentFlags().String("s3-prefix", "", "Key prefix for uploaded reports")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile used for the S3 upload")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Do not print the welcome banner")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()
	input, _ := flags.GetString("input")
	sheet, _ := flags.GetString("sheet")
	configFile, _ := flags.GetString("config-file")
	dir, _ := flags.GetString("dir")
	reportType, _ := flags.GetStringSlice("report-type")
	workers, _ := flags.GetInt("workers")
	bucket, _ := flags.GetString("s3-bucket")
	prefix, _ := flags.GetString("s3-prefix")
	profile, _ := flags.GetString("profile")
	noBanner, _ := flags.GetBool("no-banner")

	// Diretório vazio fica para o arquivo de config; sem ele, o cwd é usado
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	if input != "" {
		absInput, err := filepath.Abs(input)
		if err != nil {
			return nil, err
		}
		input = absInput
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		Input:      input,
		Sheet:      sheet,
		ReportType: reportType,
		Dir:        dir,
		Workers:    workers,
		S3Bucket:   bucket,
		S3Prefix:   prefix,
		Profile:    profile,
		NoBanner:   noBanner,
	}, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	// Argumento posicional é aceito como atalho para --input
	if cliArgs.Input == "" && len(args) > 0 {
		if cliArgs.Input, err = filepath.Abs(args[0]); err != nil {
			return err
		}
	}

	if !cliArgs.NoBanner {
		displayWelcomeBanner(app.version)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go version.CheckLatestVersion(ctx, app.version)

	_, err = app.reportUseCase.RunReports(ctx, cliArgs)
	return err
}

// AlreadyReported informa se o erro já foi exibido pelo caso de uso, para
// que o main não o imprima de novo.
func AlreadyReported(err error) bool {
	var schemaErr *types.SchemaError
	return errors.Is(err, types.ErrSomeReportsFailed) ||
		errors.Is(err, usecase.ErrInputNotRead) ||
		errors.As(err, &schemaErr)
}

// SetReportUseCase sets the report use case for the CLI app.
func (app *CLIApp) SetReportUseCase(useCase *usecase.ReportUseCase) {
	app.reportUseCase = useCase
}
