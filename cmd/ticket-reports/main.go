package main

import (
	"fmt"
	"os"

	"github.com/diillson/ticket-region-reports/internal/adapter/driven/aws"
	"github.com/diillson/ticket-region-reports/internal/adapter/driven/config"
	"github.com/diillson/ticket-region-reports/internal/adapter/driven/dataset"
	"github.com/diillson/ticket-region-reports/internal/adapter/driven/export"
	"github.com/diillson/ticket-region-reports/internal/adapter/driving/cli"
	"github.com/diillson/ticket-region-reports/internal/application/usecase"
	"github.com/diillson/ticket-region-reports/internal/domain/entity"
	"github.com/diillson/ticket-region-reports/pkg/console"
	"github.com/diillson/ticket-region-reports/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	datasetRepo := dataset.NewDatasetRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	storageRepo := aws.NewAWSRepository()
	consoleImpl := console.NewConsole()

	table := entity.DefaultRegionTable()
	reporter := usecase.NewRegionReporter(table, export.NewXLSXRenderer())

	reportUseCase := usecase.NewReportUseCase(
		datasetRepo,
		exportRepo,
		configRepo,
		storageRepo,
		reporter,
		table,
		consoleImpl,
	)

	app.SetReportUseCase(reportUseCase)

	if err := app.Execute(); err != nil {
		if !cli.AlreadyReported(err) {
			fmt.Fprintf(os.Stderr, "%s %v\n", console.BoldRed("Error:"), err)
		}
		os.Exit(1)
	}
}
