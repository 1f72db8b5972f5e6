package cli

import (
	"fmt"

	"github.com/diillson/ticket-region-reports/pkg/console"
	"github.com/diillson/ticket-region-reports/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
  _______ _      _        _     _____                       _
 |__   __(_)    | |      | |   |  __ \                     | |
    | |   _  ___| | _____| |_  | |__) |___ _ __   ___  _ __| |_ ___
    | |  | |/ __| |/ / _ \ __| |  _  // _ \ '_ \ / _ \| '__| __/ __|
    | |  | | (__|   <  __/ |_  | | \ \  __/ |_) | (_) | |  | |_\__ \
    |_|  |_|\___|_|\_\___|\__| |_|  \_\___| .__/ \___/|_|   \__|___/
                                          | |
                                          |_|
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Println(red(banner))
	fmt.Println(console.BrightCyan(bannerTitle(versionStr)))
}

// bannerTitle prefere a versão formatada com commit; a versão crua vinda do
// main só aparece quando o build não trouxe nenhuma informação.
func bannerTitle(versionStr string) string {
	formatted := version.FormatVersion()
	if formatted == "" {
		formatted = versionStr
	}
	return fmt.Sprintf("Ticket Region Reports CLI (v%s)", formatted)
}
