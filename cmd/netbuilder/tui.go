package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netbuilder/pkg/combinatorics"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	specBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	networkView
	specificationView
	commandView
	viewCount
)

var viewNames = []string{"Dashboard", "Network", "Specification", "Command"}

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
	AddNode  key.Binding
	Delete   key.Binding
	SelfLoop key.Binding
	Flip     key.Binding
	Clear    key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select / run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	AddNode: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "add node"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "delete selected"),
	),
	SelfLoop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "self loop"),
	),
	Flip: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "flip link"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.AddNode, k.Delete, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.AddNode, k.Delete, k.SelfLoop, k.Flip, k.Clear},
		{k.Quit},
	}
}

func newTUICmd(root *rootOptions) *cobra.Command {
	var empty bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Edit a network in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			opts := sessionOptions(cfg)
			if empty {
				opts.Seed = false
			}
			session := editor.NewSession(opts)
			defer session.Close()

			p := tea.NewProgram(newModel(cmd.Context(), session),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "Start from an empty network instead of the seed")
	return cmd
}

type model struct {
	ctx         context.Context
	session     *editor.Session
	report      editor.Report
	currentView view
	input       textinput.Model
	nodeTable   table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
}

func newModel(ctx context.Context, session *editor.Session) model {
	ti := textinput.New()
	ti.Placeholder = "link 0 2"
	ti.CharLimit = 256
	ti.Width = 60

	columns := []table.Column{
		{Title: "Node", Width: 6},
		{Title: "Role", Width: 10},
		{Title: "Logic", Width: 30},
		{Title: "Factor", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		ctx:         ctx,
		session:     session,
		report:      session.Report(),
		currentView: dashboardView,
		input:       ti,
		nodeTable:   t,
		help:        help.New(),
		keys:        keys,
	}
	m.refreshTable()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		typing := m.currentView == commandView && m.input.Focused()

		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit) && !typing:
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.setView((m.currentView + 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.ShiftTab):
			m.setView((m.currentView + viewCount - 1) % viewCount)
			return m, nil

		case key.Matches(msg, m.keys.Enter):
			switch m.currentView {
			case commandView:
				m.runInput()
			case networkView:
				m.selectRow()
			}
			return m, nil

		case typing:
			// Everything else goes to the input below.

		case key.Matches(msg, m.keys.AddNode):
			m.apply(editor.AddNode{})
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			m.apply(editor.DeleteSelected{})
			return m, nil
		case key.Matches(msg, m.keys.SelfLoop):
			m.apply(editor.AddSelfLoop{})
			return m, nil
		case key.Matches(msg, m.keys.Flip):
			m.apply(editor.ToggleSelectedLink{})
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.apply(editor.ClearSelection{})
			return m, nil
		}
	}

	// Update focused component
	switch m.currentView {
	case commandView:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	case networkView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) setView(v view) {
	m.currentView = v
	if v == commandView {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// apply executes one command and keeps the latest report on success.
func (m *model) apply(cmd editor.Command) {
	report, err := m.session.Execute(m.ctx, cmd)
	if err != nil {
		m.message = fmt.Sprintf("%s rejected: %v", cmd.Name(), err)
		m.messageErr = true
		return
	}
	m.report = report
	m.message = fmt.Sprintf("%s applied (revision %d)", cmd.Name(), report.Revision)
	m.messageErr = false
	m.refreshTable()
}

func (m *model) runInput() {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		m.message = "Command cannot be empty"
		m.messageErr = true
		return
	}
	cmd, err := editor.ParseCommand(line)
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	m.apply(cmd)
	if !m.messageErr {
		m.input.Reset()
	}
}

func (m *model) selectRow() {
	row := m.nodeTable.SelectedRow()
	if row == nil {
		return
	}
	id, err := editor.ParseNodeID(row[0])
	if err != nil {
		return
	}
	m.apply(editor.SelectNode{Node: id})
}

func (m *model) refreshTable() {
	byNode := make(map[int]combinatorics.Component, len(m.report.Components))
	for _, c := range m.report.Components {
		byNode[c.NodeID] = c
	}

	rows := make([]table.Row, 0, len(m.report.Network.Nodes))
	for i, n := range m.report.Network.Nodes {
		c := byNode[n.ID]
		factor := strconv.FormatInt(c.Factor, 10)
		if !c.Classified {
			factor = "?"
		}
		rows = append(rows, table.Row{n.Name, string(c.Role), logicText(m.report, i), factor})
	}
	m.nodeTable.SetRows(rows)
	if c := m.nodeTable.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.nodeTable.SetCursor(len(rows) - 1)
	}
}

// logicText is the right-hand side of the i-th specification line.
func logicText(report editor.Report, i int) string {
	if i >= len(report.Specification) {
		return ""
	}
	_, rhs, _ := strings.Cut(report.Specification[i], " : ")
	return rhs
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("NetBuilder"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case networkView:
		s.WriteString(m.renderNetwork())
	case specificationView:
		s.WriteString(m.renderSpecification())
	case commandView:
		s.WriteString(m.renderCommand())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var renderedTabs []string
	for i, tab := range viewNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	var figures strings.Builder
	figures.WriteString("Parameter graph\n\n")
	for _, f := range m.report.Figures {
		fmt.Fprintf(&figures, "%s\n  %s\n", f.Label, f.Display)
	}
	if !m.report.Supported {
		fmt.Fprintf(&figures, "\nUnsupported logic: %s", strings.Join(m.report.UnsupportedKeys(), ", "))
	}

	summary := fmt.Sprintf(`Session
  %s

Revision   %d
Nodes      %d
Links      %d
Selection  %s`,
		m.report.Session,
		m.report.Revision,
		len(m.report.Network.Nodes),
		len(m.report.Network.Links),
		selectionText(m.report.Selection),
	)

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(summary), boxStyle.Render(figures.String())),
	)
}

func (m model) renderNetwork() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Nodes"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	s.WriteString("\n\n")

	s.WriteString(headerStyle.Render("Links"))
	s.WriteString("\n\n")
	if len(m.report.Network.Links) == 0 {
		s.WriteString("  (none)\n")
	}
	for _, l := range m.report.Network.Links {
		fmt.Fprintf(&s, "  %s\n", l)
	}

	s.WriteString(helpStyle.Render("enter select • n add • d delete • s self loop • f flip • esc clear"))
	return contentStyle.Render(s.String())
}

func (m model) renderSpecification() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Network Specification"))
	s.WriteString("\n\n")

	spec := strings.TrimSuffix(m.report.SpecificationText(), "\n")
	if spec == "" {
		spec = "No nodes yet\n\nAdd one with 'n' or the Command view!"
	}
	s.WriteString(specBoxStyle.Render(spec))

	return contentStyle.Render(s.String())
}

func (m model) renderCommand() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Command Console"))
	s.WriteString("\n\n")

	s.WriteString("Enter a command:\n\n")
	s.WriteString(m.input.View())

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Examples:\n"))
	s.WriteString(helpStyle.Render("  link X0 X2\n"))
	s.WriteString(helpStyle.Render("  merge 0 1 2\n"))
	s.WriteString(helpStyle.Render("  toggle 1 2\n"))

	return contentStyle.Render(s.String())
}

func selectionText(sel editor.Selection) string {
	switch {
	case sel.Node != nil:
		return network.NodeName(*sel.Node)
	case sel.Link != nil:
		return sel.Link.String()
	default:
		return "none"
	}
}
