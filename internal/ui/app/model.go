package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "keycycle/internal/modules/session/dto"
	"keycycle/internal/ui/components"
	"keycycle/internal/ui/theme"
	historyview "keycycle/internal/ui/views/history"
	practiceview "keycycle/internal/ui/views/practice"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// sessionPort is the slice of the practice use-case this orchestration layer
// needs. Sub-view ports are defined in their own packages and narrowed further.

type sessionPort interface {
	Snapshot(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Transition(ctx context.Context, input sessiondto.TransitionInput) (sessiondto.SnapshotOutput, error)
	Dispatch(ctx context.Context) (sessiondto.DispatchOutput, error)
	Perform(ctx context.Context, input sessiondto.ActionInput) (sessiondto.DispatchOutput, error)
	ListReceipts(ctx context.Context) ([]sessiondto.ReceiptSummaryOutput, error)
	GetReceipt(ctx context.Context, id string) (sessiondto.ReceiptDetailOutput, error)
	Reindex(ctx context.Context) error
	GetPreferences(ctx context.Context) (sessiondto.PreferencesOutput, error)
	SetTheme(ctx context.Context, theme string) (sessiondto.PreferencesOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabPractice tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{"Practice", "History"}

// ─── async messages ───────────────────────────────────────────────────────────

type prefsLoadedMsg struct {
	prefs sessiondto.PreferencesOutput
	err   error
}

type themeSavedMsg struct {
	prefs sessiondto.PreferencesOutput
	err   error
}

type steppedMsg struct {
	label    string
	snapshot sessiondto.SnapshotOutput
	out      sessiondto.DispatchOutput
	err      error
}

type reindexedMsg struct{ err error }

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Theme   key.Binding
	Quit    key.Binding
	Request key.Binding
	Skip    key.Binding
	Pause   key.Binding
	Resume  key.Binding
	End     key.Binding
	Move    key.Binding
	Run     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Theme:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "light/dark")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Request: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "request new key")),
		Skip:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip selected key")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Resume:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "resume")),
		End:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "end session")),
		Move:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "choose control")),
		Run:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run control")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Theme, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Request, k.Skip, k.Pause, k.Resume, k.End},
		{k.Move, k.Run},
		{k.Tab, k.Help, k.Palette, k.Theme, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the theme, the
// global help overlay, and the command palette. Practice logic lives behind
// sessionPort; rendering is delegated to sub-views.
type Model struct {
	session sessionPort

	practiceView practiceview.Model
	historyView  historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	themeName string
	pinned    bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

// NewModel builds the root model. A non-empty themeName pins the flavour for
// this run; otherwise the saved preference is applied once it loads.
func NewModel(session sessionPort, themeName string) Model {
	p := theme.Use(themeName)
	return Model{
		pinned:       themeName != "",
		session:      session,
		practiceView: practiceview.New(session),
		historyView:  historyview.New(session),
		activeTab:    tabPractice,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		themeName:    p.Name,
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.practiceView.Init(),
		m.historyView.Init(),
		m.loadPrefsCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case prefsLoadedMsg:
		if msg.err != nil {
			m.status = "preferences: " + msg.err.Error()
		} else if !m.pinned && msg.prefs.Theme != m.themeName {
			m.applyTheme(msg.prefs.Theme)
		}
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			m.status = "theme: " + msg.err.Error()
		} else {
			m.status = "theme: " + msg.prefs.Theme
		}
		return m, nil

	case practiceview.PerformedMsg:
		switch {
		case msg.Err != nil:
			m.status = msg.Action + ": " + msg.Err.Error()
		case msg.Out.Finished:
			m.status = fmt.Sprintf("session finished: %d reps in %s",
				msg.Out.Receipt.TotalRepetitions, time.Duration(msg.Out.Receipt.DurationSec)*time.Second)
			cmds = append(cmds, m.historyView.Reload())
		case msg.Out.Recovered:
			m.status = "no current key, requested a new one"
		default:
			m.status = msg.Snapshot.StateLabel
		}
		var cmd tea.Cmd
		m.practiceView, cmd = m.practiceView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case steppedMsg:
		if msg.err != nil {
			m.status = msg.label + ": " + msg.err.Error()
		} else {
			m.status = msg.label + ": " + msg.snapshot.StateLabel
			if msg.out.Finished {
				cmds = append(cmds, m.historyView.Reload())
			}
		}
		cmds = append(cmds, m.practiceView.Refresh())
		return m, tea.Batch(cmds...)

	case reindexedMsg:
		if msg.err != nil {
			m.status = "reindex: " + msg.err.Error()
			return m, nil
		}
		m.status = "receipt index rebuilt"
		return m, m.historyView.Reload()

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case practiceview.SnapshotMsg:
		var cmd tea.Cmd
		m.practiceView, cmd = m.practiceView.Update(msg)
		return m, cmd

	case historyview.ReceiptsLoadedMsg, historyview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "t":
			return m, m.toggleTheme()
		}
	}

	// Ticks and spinner frames go to both views; input goes to the active tab.
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		var pCmd, hCmd tea.Cmd
		m.practiceView, pCmd = m.practiceView.Update(msg)
		m.historyView, hCmd = m.historyView.Update(msg)
		return m, tea.Batch(append(cmds, pCmd, hCmd)...)
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabPractice:
		m.practiceView, tabCmd = m.practiceView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabPractice:
		return m.practiceView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "keycycle  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if label := m.practiceView.StateLabel(); label != "" {
		left = theme.Hot.Render("● "+label) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  t:theme  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	actions := map[string]string{
		"key:request":    "request",
		"key:skip":       "skip",
		"session:pause":  "pause",
		"session:resume": "resume",
		"session:end":    "end",
	}
	if action, ok := actions[parts[0]]; ok {
		m.activeTab = tabPractice
		var cmd tea.Cmd
		m.practiceView, cmd = m.practiceView.Run(action)
		return m, cmd
	}

	switch parts[0] {
	case "state:goto":
		if len(parts) < 2 {
			m.status = "usage: state:goto <state>"
			return m, nil
		}
		target := strings.Join(parts[1:], " ")
		return m, m.transitionCmd(target)

	case "state:dispatch":
		return m, m.dispatchCmd()

	case "receipt:reindex":
		m.activeTab = tabHistory
		return m, m.reindexCmd()

	case "theme:toggle":
		return m, m.toggleTheme()

	case "theme:set":
		if len(parts) < 2 {
			m.status = "usage: theme:set <mocha|latte>"
			return m, nil
		}
		if parts[1] != theme.Mocha.Name && parts[1] != theme.Latte.Name {
			m.status = "unknown theme: " + parts[1]
			return m, nil
		}
		m.applyTheme(parts[1])
		return m, m.saveThemeCmd(parts[1])

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m Model) subViewFiltering() bool {
	return m.activeTab == tabHistory && m.historyView.Filtering()
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.practiceView, _ = m.practiceView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func (m *Model) applyTheme(name string) {
	m.themeName = theme.Use(name).Name
	m.historyView.Restyle()
}

func (m *Model) toggleTheme() tea.Cmd {
	next := theme.Latte.Name
	if m.themeName == theme.Latte.Name {
		next = theme.Mocha.Name
	}
	m.applyTheme(next)
	return m.saveThemeCmd(next)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadPrefsCmd() tea.Cmd {
	return func() tea.Msg {
		prefs, err := m.session.GetPreferences(context.Background())
		return prefsLoadedMsg{prefs: prefs, err: err}
	}
}

func (m Model) saveThemeCmd(name string) tea.Cmd {
	return func() tea.Msg {
		prefs, err := m.session.SetTheme(context.Background(), name)
		return themeSavedMsg{prefs: prefs, err: err}
	}
}

func (m Model) transitionCmd(target string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Transition(context.Background(), sessiondto.TransitionInput{Target: target})
		return steppedMsg{label: "transition", snapshot: snap, err: err}
	}
}

func (m Model) dispatchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		out, err := m.session.Dispatch(ctx)
		snap, snapErr := m.session.Snapshot(ctx)
		if err == nil {
			err = snapErr
		}
		return steppedMsg{label: "dispatch", snapshot: snap, out: out, err: err}
	}
}

func (m Model) reindexCmd() tea.Cmd {
	return func() tea.Msg {
		return reindexedMsg{err: m.session.Reindex(context.Background())}
	}
}
