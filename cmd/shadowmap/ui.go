// # cmd/shadowmap/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shadowmap/internal/engine/shadow"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	isError     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	outcome    PassOutcome
	lastUpdate time.Time
}

type updateMsg struct {
	outcome PassOutcome
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.outcome = msg.outcome
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, d := range m.outcome.Diagnostics {
			items = append(items, item{
				title:   diagnosticTitle(d),
				desc:    fmt.Sprintf("%s (%s:%d)", d.Message, d.Location.File, d.Location.Line),
				isError: d.Severity == shadow.SeverityError,
			})
		}
		for _, r := range m.outcome.Records {
			items = append(items, item{
				title: fmt.Sprintf("Mapping [%s]", r.Environment),
				desc:  fmt.Sprintf("%s.%s -> %s", r.Owner, r.Name, r.Renamed.Name),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last pass: %v | %d files | %d mixins | %d mappings",
		m.lastUpdate.Format("15:04:05"), m.outcome.Files, m.outcome.Mixins, len(m.outcome.Records)))

	var summary string
	errs := m.outcome.Errors()
	warns := m.outcome.Warnings()
	if errs == 0 && warns == 0 {
		summary = successStyle.Render("✅ All shadow members resolved")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			errorStyle.Render(fmt.Sprintf("%d Errors", errs)),
			warningStyle.Render(fmt.Sprintf("%d Warnings", warns)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Shadow Mapping Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func diagnosticTitle(d shadow.Diagnostic) string {
	switch d.Kind {
	case shadow.KindMappingConflict:
		return "Mapping Conflict"
	case shadow.KindInvalidTarget:
		return "Invalid Target"
	default:
		return "Missing Mapping"
	}
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Resolution Results"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
