package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netsmith/pkg/errors"
	"github.com/matzehuels/netsmith/pkg/geometry"
	"github.com/matzehuels/netsmith/pkg/layout"
	"github.com/matzehuels/netsmith/pkg/topology"
)

var watchDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// Record filters cycled with tab.
const (
	showAll = iota
	showRouters
	showPorts
)

var filterNames = []string{"all", "routers", "connections"}

func (c *CLI) watchCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a resource's canvas live",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "interval must be positive")
			}
			a, err := c.newApp()
			if err != nil {
				return err
			}
			m := newWatchModel(cmd.Context(), a.engine, c.resourceArg(), interval)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "refresh interval")
	return cmd
}

// =============================================================================
// WatchModel - live canvas view
// =============================================================================

// snapshotMsg carries one refresh result.
type snapshotMsg struct {
	snap     topology.Snapshot
	occupied geometry.Rect
	hasArea  bool
	next     geometry.Rect
	err      error
	at       time.Time
}

type tickMsg time.Time

// WatchModel is the bubbletea model for the watch command.
type WatchModel struct {
	ctx      context.Context
	engine   *layout.Engine
	resource int
	interval time.Duration

	last   snapshotMsg
	loaded bool
	filter int
	cursor int
	offset int
	height int
}

func newWatchModel(ctx context.Context, e *layout.Engine, resource int, interval time.Duration) WatchModel {
	return WatchModel{ctx: ctx, engine: e, resource: resource, interval: interval, height: 15}
}

func (m WatchModel) Init() tea.Cmd {
	return m.load()
}

// load fetches a fresh snapshot and the next right-hand allocation.
func (m WatchModel) load() tea.Cmd {
	return func() tea.Msg {
		msg := snapshotMsg{at: time.Now()}
		msg.snap, msg.err = m.engine.Cache().Snapshot(m.ctx, m.resource, true)
		if msg.err != nil {
			return msg
		}
		msg.occupied, msg.hasArea, msg.err = m.engine.OccupiedArea(m.ctx, m.resource)
		if msg.err != nil {
			return msg
		}
		msg.next, msg.err = m.engine.NextAvailableArea(m.ctx, m.resource, layout.Right)
		return msg
	}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m WatchModel) rows() []recordRow {
	return snapshotRows(m.last.snap, m.filter != showPorts, m.filter != showRouters)
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.last, m.loaded = msg, true
		if n := len(m.rows()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, m.tick()
	case tickMsg:
		return m, m.load()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load()
		case "tab":
			m.filter = (m.filter + 1) % len(filterNames)
			m.cursor, m.offset = 0, 0
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows())-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Resource %d", m.resource)))
	b.WriteString("  ")
	b.WriteString(watchDimStyle.Render("tab filter  r refresh  ↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if !m.loaded {
		b.WriteString(watchDimStyle.Render("loading..."))
		return b.String()
	}
	if m.last.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.last.err))
		b.WriteString("\n")
	}

	occupied := "none"
	if m.last.hasArea {
		occupied = m.last.occupied.String()
	}
	fmt.Fprintf(&b, "%s %s   %s %s\n\n",
		watchDimStyle.Render("occupied"), StyleNumber.Render(occupied),
		watchDimStyle.Render("next"), StyleNumber.Render(m.last.next.String()))

	rows := m.rows()
	end := min(m.offset+m.height, len(rows))
	if len(rows) > 0 {
		b.WriteString(recordTable(rows[m.offset:end], m.cursor-m.offset))
	} else {
		b.WriteString(watchDimStyle.Render("  nothing on this canvas"))
	}
	b.WriteString("\n\n")
	b.WriteString(watchDimStyle.Render(fmt.Sprintf("  %s · %d routers · %d connections · %s",
		filterNames[m.filter], len(m.last.snap.Routers), len(m.last.snap.Ports), m.last.at.Format("15:04:05"))))

	return b.String()
}
