// Package display renders push/fold charts for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
)

// Chart renders a header line followed by the pusher and caller grids side
// by side.
func Chart(c *solver.Chart) string {
	pusher := Grid("Pusher (SB)", c.Strategy(solver.RolePusher))
	caller := Grid("Caller (BB)", c.Strategy(solver.RoleCaller))
	grids := lipgloss.JoinHorizontal(lipgloss.Top, pusher, "  ", caller)
	return lipgloss.JoinVertical(lipgloss.Left, Header(c), "", grids, "", Legend())
}

// Header summarises the game and training run behind a chart.
func Header(c *solver.Chart) string {
	g := c.Game
	line := fmt.Sprintf("%sbb effective, blinds %s/%s, %d iterations (%s, %s sampling)",
		formatChips(g.EffectiveBB()), formatChips(g.SmallBlind), formatChips(g.BigBlind),
		c.Iterations, c.Training.Variant, c.Training.Sampling)
	return InfoStyle.Render(line)
}

// Legend explains the cell layout.
func Legend() string {
	return InfoStyle.Render("cells are percentages; suited hands above the diagonal, offsuit below")
}

// Grid renders one 13x13 table with aces in the first row and column. Each
// cell is the probability of pushing (or calling) as a whole percentage.
func Grid(title string, t *solver.StrategyTable) string {
	headers := make([]string, 0, poker.NumRanks+1)
	headers = append(headers, "")
	for i := range poker.NumRanks {
		headers = append(headers, string(poker.RankChar(displayRank(i))))
	}

	rows := make([][]string, poker.NumRanks)
	for i := range poker.NumRanks {
		row := make([]string, 0, poker.NumRanks+1)
		row = append(row, string(poker.RankChar(displayRank(i))))
		for j := range poker.NumRanks {
			row = append(row, fmt.Sprintf("%3.0f", t.At(cellIndex(i, j))*100))
		}
		rows[i] = row
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return LabelStyle
			}
			return frequencyStyle(t.At(cellIndex(row, col-1)))
		})

	summary := fmt.Sprintf("range %.1f%% of hands", t.Range()*100)
	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), tbl.String(), InfoStyle.Render(summary))
}

// Hand renders a single category's frequencies for both roles.
func Hand(c *solver.Chart, idx poker.HoleIndex) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render(idx.String()), InfoStyle.Render(fmt.Sprintf("(%d combos)", idx.Combos())))
	for _, role := range []solver.Role{solver.RolePusher, solver.RoleCaller} {
		p := c.Strategy(role).At(idx)
		fmt.Fprintf(&b, "  %-6s %s\n", role, frequencyStyle(p).Render(fmt.Sprintf("%5.1f%%", p*100)))
	}
	return b.String()
}

// Equity renders a hand's equity when called.
func Equity(eq float64) string {
	return fmt.Sprintf("  %-6s %s\n", "equity", InfoStyle.Render(fmt.Sprintf("%5.1f%% when called", eq*100)))
}

// displayRank maps the i-th display row or column to a rank, aces first.
func displayRank(i int) uint8 {
	return uint8(poker.NumRanks - 1 - i)
}

// cellIndex returns the category shown at display row i, column j.
func cellIndex(i, j int) poker.HoleIndex {
	return poker.HoleIndex{Row: displayRank(i), Col: displayRank(j)}
}

func formatChips(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
