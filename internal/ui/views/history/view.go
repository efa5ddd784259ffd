package history

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	sessiondto "keycycle/internal/modules/session/dto"
	"keycycle/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	ListReceipts(ctx context.Context) ([]sessiondto.ReceiptSummaryOutput, error)
	GetReceipt(ctx context.Context, id string) (sessiondto.ReceiptDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ReceiptsLoadedMsg struct {
	Receipts []sessiondto.ReceiptSummaryOutput
	Err      error
}

type DetailLoadedMsg struct {
	Detail sessiondto.ReceiptDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type receiptItem struct {
	receipt sessiondto.ReceiptSummaryOutput
}

func (i receiptItem) Title() string {
	return i.receipt.EndedAt.Local().Format("2006-01-02 15:04")
}

func (i receiptItem) Description() string {
	return fmt.Sprintf("%d reps  %d keys  %s",
		i.receipt.TotalRepetitions, i.receipt.KeysPracticed, time.Duration(i.receipt.DurationSec)*time.Second)
}

func (i receiptItem) FilterValue() string { return i.Title() + " " + i.receipt.ID }

// ─── model ───────────────────────────────────────────────────────────────────

// Model lists saved receipts and renders the selected note with glamour.
type Model struct {
	port     Port
	list     list.Model
	detail   sessiondto.ReceiptDetailOutput
	preview  viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	loading  bool
	width    int
	height   int
}

func New(port Port) Model {
	l := list.New(nil, newDelegate(), 0, 0)
	l.Title = "Receipts"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("receipt", "receipts")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:     port,
		list:     l,
		preview:  viewport.New(0, 0),
		spinner:  sp,
		renderer: newRenderer(0),
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadReceiptsCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case ReceiptsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Receipts: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Receipts))
		for i, r := range msg.Receipts {
			items[i] = receiptItem{receipt: r}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Receipts) > 0 {
			m.list.Select(0)
			cmds = append(cmds, m.loadDetailCmd(msg.Receipts[0].ID))
		} else {
			m.detail = sessiondto.ReceiptDetailOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err != nil {
			m.preview.SetContent(theme.Bad.Render("Error: " + msg.Err.Error()))
		} else {
			m.detail = msg.Detail
			m.preview.SetContent(m.renderDetail())
			m.preview.GotoTop()
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(receiptItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.receipt.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading receipts…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Reload refetches the receipt list, e.g. after a session ended.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadReceiptsCmd(), m.spinner.Tick)
}

// Restyle rebuilds theme-dependent parts after a theme switch.
func (m *Model) Restyle() {
	m.list.Styles.Title = theme.Title
	m.list.SetDelegate(newDelegate())
	m.spinner.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	m.renderer = newRenderer(m.preview.Width)
	if m.detail.ID != "" {
		m.preview.SetContent(m.renderDetail())
	}
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func newDelegate() list.DefaultDelegate {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)
	return delegate
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
	m.renderer = newRenderer(m.preview.Width)
	if m.detail.ID != "" {
		m.preview.SetContent(m.renderDetail())
	}
}

func (m Model) renderDetail() string {
	d := m.detail
	if d.ID == "" {
		return theme.Muted.Render("No receipts yet. Finish a practice session to create one.")
	}
	if m.renderer != nil && d.Content != "" {
		if rendered, err := m.renderer.Render(d.Content); err == nil {
			return rendered + theme.Muted.Render("note: "+d.NotePath)
		}
	}
	if d.Content != "" {
		return d.Content
	}
	return fmt.Sprintf("%s\n\n%s%d\n", theme.Title.Render(d.ID), theme.Muted.Render("repetitions: "), d.TotalRepetitions)
}

func (m Model) loadReceiptsCmd() tea.Cmd {
	return func() tea.Msg {
		receipts, err := m.port.ListReceipts(context.Background())
		return ReceiptsLoadedMsg{Receipts: receipts, Err: err}
	}
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.GetReceipt(context.Background(), id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
