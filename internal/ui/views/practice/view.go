package practice

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "keycycle/internal/modules/session/dto"
	"keycycle/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Perform(ctx context.Context, input sessiondto.ActionInput) (sessiondto.DispatchOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SnapshotMsg struct {
	Snapshot sessiondto.SnapshotOutput
	Err      error
}

// PerformedMsg reports one finished action. The root model watches it to
// refresh the History tab after a session ends.
type PerformedMsg struct {
	Action   string
	Out      sessiondto.DispatchOutput
	Snapshot sessiondto.SnapshotOutput
	Err      error
}

type tickMsg time.Time

// actionKeys binds a single key to each action.
var actionKeys = map[string]string{
	"request": "r",
	"skip":    "s",
	"pause":   "p",
	"resume":  "u",
	"end":     "e",
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   Port
	snap   sessiondto.SnapshotOutput
	cursor int
	busy   bool
	err    error
	now    time.Time
	width  int
	height int
	loaded bool
}

func New(port Port) Model {
	return Model{port: port}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.snapshotCmd(), tick())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case SnapshotMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.snap = msg.Snapshot
		}

	case PerformedMsg:
		m.busy = false
		m.err = msg.Err
		if msg.Snapshot.State != "" {
			m.snap = msg.Snapshot
		}

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.snap.Actions)-1 {
				m.cursor++
			}
		case "enter", " ":
			if m.cursor < len(m.snap.Actions) {
				return m.Run(m.snap.Actions[m.cursor].Name)
			}
		default:
			for name, k := range actionKeys {
				if msg.String() == k {
					return m.Run(name)
				}
			}
		}
	}
	return m, nil
}

// Run performs the named action when the current state allows it.
func (m Model) Run(name string) (Model, tea.Cmd) {
	for _, a := range m.snap.Actions {
		if a.Name == name && !a.Enabled {
			m.err = fmt.Errorf("%s is not available while %s", a.Label, strings.ToLower(m.snap.StateLabel))
			return m, nil
		}
	}
	m.busy = true
	return m, m.performCmd(name)
}

// Refresh reloads the snapshot, for changes made outside this view.
func (m Model) Refresh() tea.Cmd {
	return m.snapshotCmd()
}

func (m Model) StateLabel() string {
	return m.snap.StateLabel
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Loading practice session…"))
	}

	leftW := m.width * 4 / 10
	if leftW < 30 {
		leftW = 30
	}
	rightW := m.width - leftW - 2
	if rightW < 20 {
		rightW = 20
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderKeyCard(leftW-4),
		m.renderControls(leftW-4),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderCatalog(rightW-4),
		m.renderTimeline(rightW-4),
	)

	leftPane := theme.PaneActive.Width(leftW - 2).Render(left)
	rightPane := theme.Pane.Width(rightW - 2).Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderKeyCard(w int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Practice Session") + "\n")
	sb.WriteString(theme.Muted.Render("state: ") + theme.Hot.Render(m.snap.StateLabel) + "\n")
	sb.WriteString(theme.Muted.Render("phase: ") + m.snap.Phase + "\n")
	if elapsed := m.elapsed(); elapsed > 0 {
		sb.WriteString(theme.Muted.Render("time:  ") + elapsed.String() + "\n")
	}
	sb.WriteString("\n")

	name := "-"
	reps := ""
	if m.snap.HasCurrentKey {
		name = m.snap.CurrentKey.Name
		reps = fmt.Sprintf("%d repetitions", m.snap.CurrentKey.Repetitions)
	}
	keyBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Lavender).
		Foreground(theme.Lavender).
		Bold(true).
		Align(lipgloss.Center).
		Width(w-2).
		Padding(1, 0).
		Render(name)
	sb.WriteString(keyBox + "\n")
	if reps != "" {
		sb.WriteString(lipgloss.NewStyle().Width(w).Align(lipgloss.Center).Render(theme.Muted.Render(reps)) + "\n")
	}

	if m.snap.HasReceipt {
		r := m.snap.LastReceipt
		sb.WriteString("\n" + theme.Good.Render("Last receipt") + "\n")
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("reps:  "), r.TotalRepetitions))
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("keys:  "), r.KeysPracticed))
		sb.WriteString(fmt.Sprintf("%s%s\n", theme.Muted.Render("time:  "), time.Duration(r.DurationSec)*time.Second))
		if r.NotePath != "" {
			sb.WriteString(theme.Muted.Render("note:  ") + r.NotePath + "\n")
		}
	}
	return sb.String()
}

func (m Model) renderControls(w int) string {
	var sb strings.Builder
	sb.WriteString("\n" + theme.Title.Render("Controls") + "\n")
	for i, a := range m.snap.Actions {
		cursor := "  "
		if i == m.cursor {
			cursor = theme.Hot.Render("› ")
		}
		line := fmt.Sprintf("[%s] %s", actionKeys[a.Name], a.Label)
		if a.Enabled {
			line = lipgloss.NewStyle().Foreground(theme.Text).Render(line)
		} else {
			line = theme.Muted.Strikethrough(true).Render(line)
		}
		sb.WriteString(cursor + line + "\n")
	}
	if m.busy {
		sb.WriteString(theme.Muted.Render("working…") + "\n")
	}
	if m.err != nil {
		sb.WriteString(lipgloss.NewStyle().Width(w).Render(theme.Bad.Render(m.err.Error())) + "\n")
	}
	return sb.String()
}

func (m Model) renderCatalog(w int) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Keys") + "\n")
	cellW := w / 6
	if cellW < 6 {
		cellW = 6
	}
	cells := make([]string, 0, len(m.snap.Keys))
	for _, k := range m.snap.Keys {
		style := lipgloss.NewStyle().Width(cellW).Foreground(theme.Subtext0)
		if m.snap.HasCurrentKey && k.NID == m.snap.CurrentKey.NID {
			style = style.Foreground(theme.Peach).Bold(true)
		} else if k.Repetitions > 0 {
			style = style.Foreground(theme.Green)
		}
		cells = append(cells, style.Render(fmt.Sprintf("%-2s %d", k.Name, k.Repetitions)))
	}
	for i := 0; i < len(cells); i += 6 {
		end := i + 6
		if end > len(cells) {
			end = len(cells)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...) + "\n")
	}
	return sb.String()
}

func (m Model) renderTimeline(_ int) string {
	var sb strings.Builder
	sb.WriteString("\n" + theme.Title.Render("Timeline") + "\n")
	if len(m.snap.History) == 0 {
		sb.WriteString(theme.Muted.Render("nothing recorded yet") + "\n")
		return sb.String()
	}
	limit := m.height - 14
	if limit < 3 {
		limit = 3
	}
	entries := m.snap.History
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	for _, e := range entries {
		line := theme.Muted.Render(e.At.Local().Format("15:04:05")) + "  " + e.Label
		if e.KeyName != "-" {
			line += theme.Muted.Render(" · " + e.KeyName)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (m Model) elapsed() time.Duration {
	if len(m.snap.History) == 0 || m.now.IsZero() {
		return 0
	}
	d := m.now.Sub(m.snap.History[0].At).Truncate(time.Second)
	if d < 0 {
		return 0
	}
	return d
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Snapshot(context.Background())
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) performCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		out, err := m.port.Perform(ctx, sessiondto.ActionInput{Action: name})
		snap, snapErr := m.port.Snapshot(ctx)
		if err == nil {
			err = snapErr
		}
		return PerformedMsg{Action: name, Out: out, Snapshot: snap, Err: err}
	}
}
