package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/pfdrill/internal/config"
	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/matrix"
	"github.com/verte-zerg/pfdrill/internal/model"
	"github.com/verte-zerg/pfdrill/internal/rangepack"
	"github.com/verte-zerg/pfdrill/internal/ranges"
	"github.com/verte-zerg/pfdrill/internal/rangespec"
)

var (
	labHighlight string
	labDiffTop   int

	importForce   bool
	importRefetch bool
)

func newSpotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spots",
		Short: "List loaded range spots",
		Args:  cobra.NoArgs,
		RunE:  runSpotsCmd,
	}
}

func runSpotsCmd(cmd *cobra.Command, _ []string) error {
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	_, db, err := loadDatabase(r.SpotsDir)
	if err != nil {
		return err
	}
	data := pterm.TableData{{"Spot", "Type", "Hero", "Villain", "Bets", "Hands"}}
	for _, key := range ranges.Keys(db) {
		spot, _ := ranges.Lookup(db, key)
		bets := ""
		if spot.Kind() == model.SpotDefend {
			bets = fmt.Sprintf("%sbb / %sbb", formatBet(spot.Setup.HeroBet), formatBet(spot.Setup.VillainBet))
		}
		data = append(data, []string{
			key.String(),
			string(spot.Kind()),
			spot.Setup.HeroPos,
			spot.Setup.VillainPos,
			bets,
			strconv.Itoa(len(rangespec.Expand(spot.Ranges.TrainingRange()))),
		})
	}
	pterm.Info.Printfln("%d spots in %s", len(data)-1, r.SpotsDir)
	return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
}

func formatBet(v model.BetSize) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 64)
}

func newLabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab <spot> [spot]",
		Short: "Show a range matrix or compare two spots side by side",
		Long:  "Spots are given as source|scenario|spot, as printed by `pfdrill spots`.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runLabCmd,
	}
	cmd.Flags().StringVar(&labHighlight, "highlight", "", "hand to highlight, e.g. AKs")
	cmd.Flags().IntVar(&labDiffTop, "diff-top", 15, "number of differing hands to list")
	return cmd
}

func runLabCmd(cmd *cobra.Command, args []string) error {
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	_, db, err := loadDatabase(r.SpotsDir)
	if err != nil {
		return err
	}
	var highlight hand.Hand
	if labHighlight != "" {
		if highlight, err = hand.Parse(labHighlight); err != nil {
			return fmt.Errorf("invalid --highlight value: %w", err)
		}
	}

	spots := make([]model.Spot, 0, len(args))
	panels := make([]string, 0, len(args))
	for _, raw := range args {
		key, err := model.ParseSpotKey(raw)
		if err != nil {
			return err
		}
		spot, ok := ranges.Lookup(db, key)
		if !ok {
			return fmt.Errorf("unknown spot %s (see: pfdrill spots)", key)
		}
		spots = append(spots, spot)
		title := lipgloss.NewStyle().Bold(true).Render(key.String())
		panels = append(panels, lipgloss.JoinVertical(lipgloss.Left, title, matrix.Render(matrix.Build(spot, highlight))))
	}

	out := cmd.OutOrStdout()
	gridWidth := len(hand.Ranks) * matrix.CellWidth
	var view string
	if len(panels) == 2 && labTerminalWidth() >= 2*gridWidth+4 {
		view = lipgloss.JoinHorizontal(lipgloss.Top, panels[0], "    ", panels[1])
	} else {
		view = strings.Join(panels, "\n\n")
	}
	if _, err := fmt.Fprintf(out, "%s\n\n%s\n", view, matrix.Legend()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(spots) < 2 {
		return nil
	}

	deltas := matrix.Diff(spots[0], spots[1])
	if len(deltas) == 0 {
		pterm.Success.Println("Both spots play every hand the same way")
		return nil
	}
	sortDeltas(deltas)
	pterm.Info.Printfln("%d hands differ", len(deltas))
	data := pterm.TableData{{"Hand", "Raise A", "Call A", "Raise B", "Call B", "Shift"}}
	for i, d := range deltas {
		if labDiffTop > 0 && i >= labDiffTop {
			break
		}
		data = append(data, []string{
			string(d.Hand),
			percent(d.RaiseA), percent(d.CallA),
			percent(d.RaiseB), percent(d.CallB),
			percent(d.Shift()),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
}

// sortDeltas orders by largest shift, keeping grid order for ties.
func sortDeltas(deltas []matrix.Delta) {
	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Shift() > deltas[j].Shift()
	})
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

func labTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <zip|url>",
		Short: "Import a range pack into the spots directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().BoolVar(&importForce, "force", false, "overwrite existing range files")
	cmd.Flags().BoolVar(&importRefetch, "refetch", false, "download again even when the pack is cached")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	r, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	src := args[0]
	zipPath := src
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		logErrf("Fetching %s...\n", src)
		pack, err := rangepack.Fetch(context.Background(), src, config.DefaultPackCacheDir(), importRefetch)
		if err != nil {
			return fmt.Errorf("failed to download pack: %w", err)
		}
		if pack.Cached {
			logErrf("Using cached pack %s\n", pack.Path)
		}
		zipPath = pack.Path
	}
	written, err := rangepack.Extract(zipPath, r.SpotsDir, importForce)
	if err != nil {
		if errors.Is(err, rangepack.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	for _, name := range written {
		logErrf("Wrote %s\n", name)
	}

	db, errs := ranges.Load(r.SpotsDir)
	for _, e := range errs {
		pterm.Warning.Printfln("%v", e)
	}
	pterm.Success.Printfln("Imported %d files, %d spots available", len(written), len(ranges.Keys(db)))
	return nil
}
