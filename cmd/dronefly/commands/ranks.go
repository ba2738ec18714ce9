package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dronefly-project/dronefly/taxon"
)

// RanksCmd lists rank keywords
var RanksCmd = &cobra.Command{
	Use:   "ranks [rank]",
	Short: "List rank keywords",
	Long: `List the rank names recognized in queries, coarsest first, with their
aliases. Given a rank, show its level and the ranks below it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRanks,
}

func runRanks(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	aliases := make(map[string][]string)
	for alias, rank := range taxon.RankEquivalents {
		aliases[rank] = append(aliases[rank], alias)
	}

	if len(args) == 1 {
		rank, ok := taxon.CanonicalRank(strings.ToLower(args[0]))
		if !ok {
			return fmt.Errorf("unknown rank: %s", args[0])
		}
		level, _ := taxon.RankLevel(rank)
		fmt.Fprintf(out, "%s (level %s)\n", rank, formatLevel(level))

		var below []string
		for _, other := range sortedRanks() {
			if taxon.IsDescendantRank(other, rank) {
				below = append(below, other)
			}
		}
		if len(below) > 0 {
			fmt.Fprintf(out, "Ranks below: %s\n", strings.Join(below, ", "))
		}
		return nil
	}

	rows := pterm.TableData{{"Rank", "Level", "Aliases"}}
	for _, rank := range sortedRanks() {
		level, _ := taxon.RankLevel(rank)
		names := aliases[rank]
		sort.Strings(names)
		rows = append(rows, []string{rank, formatLevel(level), strings.Join(names, ", ")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).WithWriter(out).Render()
}

// sortedRanks returns canonical ranks, coarsest first, ties by name.
func sortedRanks() []string {
	ranks := make([]string, 0, len(taxon.RankLevels))
	for rank := range taxon.RankLevels {
		ranks = append(ranks, rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		li, lj := taxon.RankLevels[ranks[i]], taxon.RankLevels[ranks[j]]
		if li != lj {
			return li > lj
		}
		return ranks[i] < ranks[j]
	})
	return ranks
}

func formatLevel(level float64) string {
	return strconv.FormatFloat(level, 'f', -1, 64)
}
