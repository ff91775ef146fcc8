package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/woundlink/callcore/internal/protocol"
)

// StatsFetcher returns the current server snapshot.
type StatsFetcher func(ctx context.Context) (protocol.Stats, error)

type statsMsg struct {
	stats protocol.Stats
	at    time.Time
}

type fetchErrMsg struct {
	err error
	at  time.Time
}

type pollMsg time.Time

// WatchModel is the bubbletea model behind `callctl watch`: it polls the
// server on an interval and renders the room table.
type WatchModel struct {
	server   string
	interval time.Duration
	fetch    StatsFetcher
	now      func() time.Time

	spinner  spinner.Model
	stats    *protocol.Stats
	updated  time.Time
	err      error
	quitting bool
}

func NewWatchModel(server string, interval time.Duration, fetch StatsFetcher) *WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &WatchModel{
		server:   server,
		interval: interval,
		fetch:    fetch,
		now:      time.Now,
		spinner:  s,
	}
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m *WatchModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.fetch(context.Background())
		if err != nil {
			return fetchErrMsg{err: err, at: m.now()}
		}
		return statsMsg{stats: stats, at: m.now()}
	}
}

func (m *WatchModel) pollCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case statsMsg:
		m.stats = &msg.stats
		m.updated = msg.at
		m.err = nil
		return m, m.pollCmd()

	case fetchErrMsg:
		m.err = msg.err
		m.updated = msg.at
		return m, m.pollCmd()

	case pollMsg:
		return m, m.fetchCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s callcore rooms · %s", IconRoom, m.server)))
	b.WriteString("\n\n")

	switch {
	case m.stats == nil && m.err == nil:
		b.WriteString(fmt.Sprintf("%s Fetching stats...\n", m.spinner.View()))
	case m.stats != nil:
		b.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
			IconRoom, BoldStyle.Render(fmt.Sprintf("%d rooms", m.stats.TotalRooms)),
			IconConnect, BoldStyle.Render(fmt.Sprintf("%d connections", m.stats.TotalConnections)),
		))
		b.WriteString(RoomsView(m.stats.Rooms, m.now()))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, m.err)))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("%s refreshing every %s", m.spinner.View(), m.interval)
	if !m.updated.IsZero() {
		footer += fmt.Sprintf(" · last update %s", m.updated.Format(time.TimeOnly))
	}
	b.WriteString(FooterStyle.Render(footer + " · r refresh · q quit"))
	return b.String()
}

// RunWatch runs the dashboard until the user quits or ctx is canceled.
func RunWatch(ctx context.Context, m *WatchModel) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
