/*
main.go - Terminal client for a saved game

PURPOSE:
  Inspects and drives a saved game without running the server. Every
  command opens the same save backend the server uses, so the CLI can
  fast-forward or wipe a game the server will resume later.

COMMANDS:
  status             Print date, phase, resources and staff
  simulate -m N      Run N months offline, save, print status
  reset              Remove the save

The real-time clock is never started here.

SEE ALSO:
  - cmd/server/main.go: The server
  - store/open.go: Backend flags
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/warp/march-of-mind/factory"
	"github.com/warp/march-of-mind/game"
	"github.com/warp/march-of-mind/generic"
	"github.com/warp/march-of-mind/store"
)

type cliFlags struct {
	balancePath string
	verbose     bool
	store       store.Options
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f cliFlags
	root := &cobra.Command{
		Use:           "mom",
		Short:         "Inspect and drive a March of Mind save",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.balancePath, "balance", "", "YAML file merged over the embedded tuning")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log game events")
	pf.StringVar(&f.store.Kind, "store", store.KindSQLite, "save backend: sqlite, postgres, s3, memory")
	pf.StringVar(&f.store.Path, "db-path", "march-of-mind.db", "sqlite database path")
	pf.StringVar(&f.store.DSN, "dsn", "", "postgres connection string")
	pf.StringVar(&f.store.Bucket, "bucket", "", "s3 bucket")
	pf.StringVar(&f.store.Region, "region", "", "s3 region")
	pf.StringVar(&f.store.Endpoint, "endpoint", "", "s3 endpoint override")
	pf.StringVar(&f.store.Prefix, "prefix", "", "s3 key prefix")

	root.AddCommand(statusCmd(&f), simulateCmd(&f), resetCmd(&f))
	return root
}

func statusCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the saved game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGame(cmd, f, func(ctx context.Context, g *game.Game, w io.Writer) error {
				found, err := g.LoadGame(ctx)
				if err != nil {
					return err
				}
				if !found {
					color.New(color.FgYellow).Fprintln(w, "No saved game, showing a fresh one.")
				}
				return printStatus(w, g.View())
			})
		},
	}
}

func simulateCmd(f *cliFlags) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run whole months offline and save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if months <= 0 {
				return &generic.ConfigError{Source: "flags", Field: "months", Reason: "must be positive"}
			}
			return withGame(cmd, f, func(ctx context.Context, g *game.Game, w io.Writer) error {
				if _, err := g.LoadGame(ctx); err != nil {
					return err
				}
				processed := g.AdvanceMonths(months)
				if err := g.SaveGame(ctx); err != nil {
					return err
				}
				color.New(color.FgGreen, color.Bold).Fprintf(w, "Processed %d of %d months\n", processed, months)
				return printStatus(w, g.View())
			})
		},
	}
	cmd.Flags().IntVarP(&months, "months", "m", 12, "months to simulate")
	return cmd
}

func resetCmd(f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove the saved game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGame(cmd, f, func(ctx context.Context, g *game.Game, w io.Writer) error {
				if err := g.ResetGame(ctx); err != nil {
					return err
				}
				g.Stop()
				color.New(color.FgGreen).Fprintln(w, "Save removed.")
				return nil
			})
		},
	}
}

// withGame opens the backend, builds a game on it and runs fn.
func withGame(cmd *cobra.Command, f *cliFlags, fn func(context.Context, *game.Game, io.Writer) error) error {
	ctx := cmd.Context()
	level := log.WarnLevel
	if f.verbose {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: level, Prefix: "mom"})

	balance, err := factory.LoadBalance(f.balancePath)
	if err != nil {
		return err
	}
	catalog, err := factory.DefaultCatalog()
	if err != nil {
		return err
	}
	backend, err := store.Open(ctx, f.store)
	if err != nil {
		return err
	}
	defer backend.Close()

	g, err := game.New(game.Options{Balance: balance, Catalog: catalog, Store: backend, Logger: logger})
	if err != nil {
		return err
	}
	defer g.Stop()
	return fn(ctx, g, cmd.OutOrStdout())
}

func printStatus(w io.Writer, v game.View) error {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "%s | %s\n", v.DisplayDate, v.PhaseTitle)

	table := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Item", "Value"}))
	rows := [][]string{
		{"Money", money(v.Resources[generic.ResourceMoney])},
		{"Insights", strconv.FormatFloat(v.Resources[generic.ResourceInsights], 'f', 2, 64)},
	}
	if v.Modules.Talent {
		rows = append(rows, []string{v.Talent.RoleName, fmt.Sprintf("%d (net %s/mo)", v.Talent.Count, money(v.Talent.MonthlyNetIncome))})
	}
	if v.Modules.Researchers {
		rows = append(rows, []string{v.Researchers.RoleName, fmt.Sprintf("%d (net %s/mo)", v.Researchers.Count, money(v.Researchers.MonthlyNetIncome))})
	}
	if v.Modules.Products {
		rows = append(rows, []string{"Products", fmt.Sprintf("%d active, %s/mo", len(v.Products.Active), money(v.Products.CurrentIncome))})
	}
	if v.Modules.TechTree {
		rows = append(rows, []string{"Research multiplier", strconv.FormatFloat(v.TechTree.TotalMultiplier, 'f', 2, 64)})
	}
	if v.Modules.Hardware {
		rows = append(rows, []string{"Hardware", fmt.Sprintf("%s (savings %s)", v.Hardware.Current.Name, money(v.Hardware.Savings))})
	}
	if v.Finished {
		rows = append(rows, []string{"Calendar", "finished"})
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func money(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 2, 64) }
