package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirillkoTankisto/iiko-bot/internal/app"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/olap"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

func init() {
	report := &cobra.Command{
		Use:       "report today|yesterday|week|month",
		Short:     "Print a cash shift report",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(app.ReportToday), string(app.ReportYesterday), string(app.ReportWeek), string(app.ReportMonth)},
		RunE:      runReport,
	}
	report.Flags().StringP("server", "s", "", "Server name (default: first configured server)")

	olapCmd := &cobra.Command{
		Use:   "olap [category]",
		Short: "Print month-to-date sales by category",
		Long:  "Without a category the available categories are listed.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOlap,
	}
	olapCmd.Flags().StringP("server", "s", "", "Server name (default: first configured server)")

	servers := &cobra.Command{
		Use:   "servers",
		Short: "List configured servers",
		Args:  cobra.NoArgs,
		RunE:  runServers,
	}

	RootCmd.AddCommand(report, olapCmd, servers)
}

func runReport(cmd *cobra.Command, args []string) error {
	kind, err := app.ParseReportKind(args[0])
	if err != nil {
		return err
	}
	serverName, _ := cmd.Flags().GetString("server")

	application, _, cleanup, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := application.Server(serverName)
	if err != nil {
		return err
	}
	text, err := application.ShiftReport(cmd.Context(), server, kind)
	if err != nil {
		return fmt.Errorf("%s report: %w", kind, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Plain(text))
	return nil
}

func runOlap(cmd *cobra.Command, args []string) error {
	serverName, _ := cmd.Flags().GetString("server")

	application, _, cleanup, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	server, err := application.Server(serverName)
	if err != nil {
		return err
	}
	group, err := application.OlapReport(cmd.Context(), server)
	if err != nil {
		return fmt.Errorf("olap report: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, strings.Join(group.Categories, "\n"))
		return nil
	}

	rows, err := olap.Category(group, args[0])
	if err != nil {
		return err
	}
	table, err := olap.RenderCategory(rows)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, ui.Plain(table))
	return nil
}

func runServers(cmd *cobra.Command, _ []string) error {
	application, _, cleanup, err := openApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	list, current := application.Servers()
	fmt.Fprintln(cmd.OutOrStdout(), ui.Plain(ui.RenderServerList(list, current)))
	return nil
}
