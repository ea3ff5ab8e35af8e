// Package inspect shows a mission in an interactive terminal UI.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

const detailsHeightPct = 0.3

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sepStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	name      string
	cfg       mission.Config
	waypoints []mission.Waypoint
	pois      []mission.POI

	config  table.Model
	table   table.Model
	details viewport.Model
	jump    textinput.Model

	jumping bool
	wrap    bool
	width   int
	height  int
	header  string
	status  string
}

func newModel(m *mission.Mission, name string) model {
	cfg := m.Config()
	configRows := []table.Row{
		{"Heading mode", cfg.HeadingMode.String()},
		{"Finish action", cfg.FinishAction.String()},
		{"Path mode", cfg.PathMode.String()},
		{"Cruising speed", fmt.Sprintf("%.1f m/s", cfg.CruisingSpeed)},
		{"RC speed", fmt.Sprintf("%.1f m/s", cfg.RCSpeed)},
		{"Repeat", strconv.Itoa(int(cfg.Repeat))},
		{"Photo interval", cfg.PhotoInterval.String()},
	}
	ct := table.New(
		table.WithColumns([]table.Column{{Title: "Config", Width: 16}, {Title: "Value", Width: 14}}),
		table.WithRows(configRows),
		table.WithHeight(len(configRows)+1),
	)

	wps := m.Waypoints()
	wt := table.New(
		table.WithColumns(waypointColumns()),
		table.WithRows(waypointRows(wps)),
		table.WithFocused(true),
	)

	ti := textinput.New()
	ti.Placeholder = "waypoint #"
	ti.CharLimit = 6

	mod := model{
		name:      name,
		cfg:       cfg,
		waypoints: wps,
		pois:      m.POIs(),
		config:    ct,
		table:     wt,
		details:   viewport.New(0, 0),
		jump:      ti,
		wrap:      true,
	}
	mod.refreshDetails()
	return mod
}

func waypointColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Lat", Width: 11},
		{Title: "Lon", Width: 11},
		{Title: "Alt", Width: 7},
		{Title: "Mode", Width: 12},
		{Title: "Heading", Width: 8},
		{Title: "Speed", Width: 6},
		{Title: "POI", Width: 4},
		{Title: "Actions", Width: 7},
	}
}

func waypointRows(wps []mission.Waypoint) []table.Row {
	rows := make([]table.Row, len(wps))
	for i, wp := range wps {
		poi := "-"
		if wp.HasPOI() {
			poi = strconv.Itoa(wp.POIIndex + 1)
		}
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.6f", wp.Coordinate.Lat),
			fmt.Sprintf("%.6f", wp.Coordinate.Lon),
			fmt.Sprintf("%.1f", wp.Altitude),
			wp.AltitudeMode.String(),
			fmt.Sprintf("%.1f", wp.Heading),
			fmt.Sprintf("%.1f", wp.Speed),
			poi,
			strconv.Itoa(len(wp.Actions)),
		}
	}
	return rows
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.Width = msg.Width
		m.header = m.renderHeader()
		m.resize()
		m.refreshDetails()
		return m, nil
	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshDetails()
			return m, nil
		case "/", "g":
			m.jumping = true
			m.status = ""
			m.jump.SetValue("")
			cmd := m.jump.Focus()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	prev := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.refreshDetails()
	}
	return m, cmd
}

func (m model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		n, err := strconv.Atoi(strings.TrimSpace(m.jump.Value()))
		if err != nil || n < 1 || n > len(m.waypoints) {
			m.status = fmt.Sprintf("no waypoint %q", m.jump.Value())
		} else {
			m.table.SetCursor(n - 1)
			m.refreshDetails()
		}
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case tea.KeyEsc:
		m.jumping = false
		m.jump.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m *model) resize() {
	detailsHeight := int(float64(m.height) * detailsHeightPct)
	if detailsHeight < 3 {
		detailsHeight = 3
	}
	m.details.Height = detailsHeight
	h := m.height - lipgloss.Height(m.header) - detailsHeight - 4
	if h < 2 {
		h = 2
	}
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
}

func (m *model) refreshDetails() {
	content := "no waypoints"
	if i := m.table.Cursor(); i >= 0 && i < len(m.waypoints) {
		content = describeWaypoint(i, m.waypoints[i], m.pois)
	}
	if m.wrap && m.details.Width > 0 {
		content = wordwrap.String(content, m.details.Width)
	}
	m.details.SetContent(content)
}

func describeWaypoint(i int, wp mission.Waypoint, pois []mission.POI) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Waypoint %d at %.6f, %.6f, %.1fm %s\n", i+1, wp.Coordinate.Lat, wp.Coordinate.Lon, wp.Altitude, wp.AltitudeMode)
	fmt.Fprintf(&b, "heading=%.1f curve=%.1f rotation=%d gimbal=%s pitch=%d speed=%.1f\n",
		wp.Heading, wp.CurveSize, wp.RotationDir, wp.GimbalMode, wp.GimbalPitchAngle, wp.Speed)
	if wp.HasPOI() && wp.POIIndex < len(pois) {
		p := pois[wp.POIIndex]
		fmt.Fprintf(&b, "POI %d at %.6f, %.6f, %.1fm %s\n", wp.POIIndex+1, p.Coordinate.Lat, p.Coordinate.Lon, p.Altitude, p.AltitudeMode)
	}
	if wp.PhotoInterval != nil {
		fmt.Fprintf(&b, "photo interval: %s\n", wp.PhotoInterval)
	}
	if len(wp.Actions) == 0 {
		b.WriteString("actions: none")
	} else {
		names := make([]string, len(wp.Actions))
		for j, a := range wp.Actions {
			names[j] = a.String()
		}
		b.WriteString("actions: " + strings.Join(names, ", "))
	}
	return b.String()
}

func (m model) renderHeader() string {
	title := titleStyle.Render(m.name)
	summary := fmt.Sprintf("%d waypoints, %d POIs", len(m.waypoints), len(m.pois))
	left := lipgloss.JoinVertical(lipgloss.Left, title, summary)
	sep := sepStyle.Render("│")
	return lipgloss.JoinHorizontal(lipgloss.Top, m.config.View(), sep, left)
}

func (m model) View() string {
	divider := sepStyle.Render(strings.Repeat("─", m.width))
	bottom := dimStyle.Render("↑/↓ select • / jump • w wrap • q quit")
	if m.jumping {
		bottom = "Go to " + m.jump.View()
	} else if m.status != "" {
		bottom = m.status
	}
	return strings.Join([]string{
		m.header,
		divider,
		m.table.View(),
		divider,
		m.details.View(),
		divider,
		bottom,
	}, "\n")
}
