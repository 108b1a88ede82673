package watch

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyleseneker/track/internal/model"
	"github.com/kyleseneker/track/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	trackingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Italic(true)
)

type tickMsg time.Time

// Model is the bubbletea view for `track watch`. Status updates arrive as
// Status messages from a Poller; between polls a one second tick keeps the
// elapsed time moving.
type Model struct {
	status Status
	now    time.Time
	clock  model.Clock
	polled bool
}

// NewModel creates an empty view. A nil clock means the system clock.
func NewModel(clock model.Clock) Model {
	if clock == nil {
		clock = model.SystemClock{}
	}
	return Model{clock: clock, now: clock.Now()}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case Status:
		m.status = msg
		m.now = msg.At
		m.polled = true
	case tickMsg:
		m.now = m.clock.Now()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var line string
	switch {
	case !m.polled:
		line = idleStyle.Render("reading state...")
	case m.status.Err != nil:
		line = errorStyle.Render(fmt.Sprintf("error: %v", m.status.Err))
		if hint := model.Suggestion(m.status.Err); hint != "" {
			line += "\n" + idleStyle.Render(hint)
		}
	case m.status.Running:
		elapsed := m.now.Sub(m.status.Start.Time())
		line = trackingStyle.Render(report.FormatDuration(elapsed)) + "\n" +
			idleStyle.Render("since "+m.status.Start.Local().Format(time.DateTime))
	default:
		line = idleStyle.Render("not tracking")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("track"))
	b.WriteString("\n\n")
	b.WriteString(boxStyle.Render(line))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// PlainPrinter writes one line to w whenever the observed state changes.
// It is the sink used by `track watch --plain`.
type PlainPrinter struct {
	w    io.Writer
	last *Status
}

// NewPlainPrinter creates a printer writing to w.
func NewPlainPrinter(w io.Writer) *PlainPrinter {
	return &PlainPrinter{w: w}
}

// Print writes st unless it matches the previously printed state.
func (p *PlainPrinter) Print(st Status) {
	if p.last != nil && p.last.sameState(st) {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", st.At.Local().Format(time.TimeOnly), st.Summary())
	p.last = &st
}
