package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	pretty "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/woundlink/callcore/internal/probe"
	"github.com/woundlink/callcore/internal/protocol"
)

// RoomsView renders the rooms of a stats snapshot as a lipgloss table.
// Ages are relative to now.
func RoomsView(rooms []protocol.RoomSummary, now time.Time) string {
	if len(rooms) == 0 {
		return MutedStyle.Render("No active rooms")
	}

	rows := make([][]string, 0, len(rooms))
	for _, r := range rooms {
		users := fmt.Sprintf("%d", r.UserCount)
		if r.UserCount == 0 {
			users = "0 (empty)"
		}
		rows = append(rows, []string{
			truncate(r.ID, 48),
			users,
			r.CreatedAt.Local().Format(time.DateTime),
			FormatAge(now.Sub(r.CreatedAt)),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("Room", "Users", "Created", "Age").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case row%2 == 0:
				return TableRowStyle
			default:
				return TableRowAltStyle
			}
		})

	return tbl.Render()
}

// StatsSummaryView renders the totals of a stats snapshot.
func StatsSummaryView(stats protocol.Stats) string {
	empty := 0
	for _, r := range stats.Rooms {
		if r.UserCount == 0 {
			empty++
		}
	}

	t := newPrettyTable()
	t.AppendHeader(pretty.Row{"Metric", "Value"})
	t.AppendRows([]pretty.Row{
		{"Rooms", stats.TotalRooms},
		{"Empty rooms", empty},
		{"Connections", stats.TotalConnections},
	})
	return t.Render()
}

// ProbeReportView renders the outcome of a probe run.
func ProbeReportView(res *probe.Result) string {
	t := newPrettyTable()
	t.SetTitle("Probe %s", res.RoomID)
	t.AppendHeader(pretty.Row{"Metric", "Value"})
	t.AppendRows([]pretty.Row{
		{"Caller", res.CallerID},
		{"Callee", res.CalleeID},
		{"Join", res.Join.Round(time.Millisecond)},
		{"Connect", res.Connect.Round(time.Millisecond)},
		{"ICE candidates sent", res.CandidatesSent},
	})
	t.AppendSeparator()
	t.AppendRows([]pretty.Row{
		{"Pings", len(res.RTTs)},
		{"RTT min", res.MinRTT().Round(time.Microsecond)},
		{"RTT mean", res.MeanRTT().Round(time.Microsecond)},
		{"RTT max", res.MaxRTT().Round(time.Microsecond)},
	})
	return t.Render()
}

func newPrettyTable() pretty.Writer {
	t := pretty.NewWriter()
	t.SetStyle(pretty.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]pretty.ColumnConfig{
		{Number: 1, Colors: text.Colors{text.Bold}},
		{Number: 2, Align: text.AlignRight},
	})
	return t
}

// FormatAge renders d compactly, e.g. "45s", "12m", "3h05m".
func FormatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
