package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/stats"
	"github.com/verte-zerg/pfdrill/internal/statsui"
	"github.com/verte-zerg/pfdrill/internal/store/filestore"
)

const (
	defaultCurveWindow = 7
	defaultHistoryShow = 20
)

var (
	statsSource      string
	statsScenario    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsText        bool

	historyLast      int
	historyAll       bool
	historyOlderThan int
	historyWithin    int
	historyYes       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSource, "source", "", "source filter")
	cmd.Flags().StringVar(&statsScenario, "scenario", "", "scenario filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N answers")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window in days")
	cmd.Flags().BoolVar(&statsText, "text", false, "print a plain report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	cfg := model.StatsConfig{
		Source:      statsSource,
		Scenario:    statsScenario,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openBackend(context.Background(), r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close store: %v\n", cerr)
		}
	}()

	if statsText || !term.IsTerminal(int(os.Stdout.Fd())) {
		return renderStatsText(cmd, st, cfg)
	}
	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func renderStatsText(cmd *cobra.Command, src stats.HistorySource, cfg model.StatsConfig) error {
	rep, err := stats.BuildReport(context.Background(), src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, rep); err != nil {
		return err
	}
	if rep.Totals.Total == 0 {
		return nil
	}
	if err := stats.RenderTable(out, "Weakest spots", "Spot", rep.Spots, 10); err != nil {
		return err
	}
	if err := stats.RenderTable(out, "Weakest hands", "Hand", rep.Hands, 15); err != nil {
		return err
	}
	if err := stats.RenderTable(out, "By correct action", "Action", rep.Actions, 0); err != nil {
		return err
	}
	if err := stats.RenderMistakes(out, rep.Mistakes); err != nil {
		return err
	}
	if drilled := stats.MostDrilled(rep.Hands, 10); len(drilled) > 0 {
		if _, err := fmt.Fprintf(out, "Most drilled: %s\n\n", strings.Join(drilled, " ")); err != nil {
			return err
		}
	}
	return stats.RenderCurves(out, rep.Days, cfg.CurveWindow, 0, 0, stats.UseColor(out))
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or prune the answer history",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the most recent answers",
		Args:  cobra.NoArgs,
		RunE:  runHistoryShowCmd,
	}
	show.Flags().IntVar(&historyLast, "last", defaultHistoryShow, "number of answers to print")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete answers from the history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	}
	clearCmd.Flags().BoolVar(&historyAll, "all", false, "delete every answer")
	clearCmd.Flags().IntVar(&historyOlderThan, "older-than", 0, "delete answers older than N days")
	clearCmd.Flags().IntVar(&historyWithin, "within", 0, "delete answers from the last N days")
	clearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func runHistoryShowCmd(cmd *cobra.Command, _ []string) error {
	if historyLast <= 0 {
		return fmt.Errorf("--last must be > 0")
	}
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	st, err := openBackend(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close store: %v\n", cerr)
		}
	}()

	records, err := st.ListHistory(ctx, model.StatsConfig{Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(records) == 0 {
		pterm.Info.Println("No answers recorded.")
		return nil
	}
	data := pterm.TableData{{"Date", "Spot", "Hand", "Result", "Correct", "Chosen"}}
	for _, rec := range records {
		result := pterm.Green("ok")
		if !rec.Correct {
			result = pterm.Red("miss")
		}
		data = append(data, []string{
			rec.Date.Local().Format(filestore.DateLayout),
			rec.Spot.String(),
			string(rec.Hand),
			result,
			string(rec.Expected),
			string(rec.Chosen),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	p, err := pruneFromFlags(cmd)
	if err != nil {
		return err
	}
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if !historyYes {
		ok, err := pterm.DefaultInteractiveConfirm.
			WithDefaultText(fmt.Sprintf("Delete %s?", describePrune(p))).
			WithDefaultValue(false).
			Show()
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			logErrln("Aborted")
			return nil
		}
	}
	ctx := context.Background()
	st, err := openBackend(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close store: %v\n", cerr)
		}
	}()
	n, err := st.DeleteHistory(ctx, p, timeNow())
	if err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	pterm.Success.Printfln("Deleted %d answers", n)
	return nil
}

// pruneFromFlags requires exactly one of --all, --older-than and --within.
func pruneFromFlags(cmd *cobra.Command) (model.Prune, error) {
	var chosen []string
	p := model.Prune{}
	if historyAll {
		chosen = append(chosen, "--all")
		p.Mode = model.PruneAll
	}
	if cmd.Flags().Changed("older-than") {
		chosen = append(chosen, "--older-than")
		p = model.Prune{Mode: model.PruneOlderThan, Days: historyOlderThan}
	}
	if cmd.Flags().Changed("within") {
		chosen = append(chosen, "--within")
		p = model.Prune{Mode: model.PruneWithin, Days: historyWithin}
	}
	switch len(chosen) {
	case 0:
		return model.Prune{}, fmt.Errorf("choose one of --all, --older-than or --within")
	case 1:
	default:
		return model.Prune{}, fmt.Errorf("flags %s are mutually exclusive", strings.Join(chosen, ", "))
	}
	if err := p.Validate(); err != nil {
		return model.Prune{}, err
	}
	return p, nil
}

func describePrune(p model.Prune) string {
	switch p.Mode {
	case model.PruneOlderThan:
		return fmt.Sprintf("answers older than %d days", p.Days)
	case model.PruneWithin:
		return fmt.Sprintf("answers from the last %d days", p.Days)
	default:
		return "the whole history"
	}
}
