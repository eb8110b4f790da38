package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/resolve"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
)

// libListModel is the bubbletea model for browsing a resolved lib map:
// arrow keys move, enter toggles a detail pane with paths and dependents.
type libListModel struct {
	registry *provider.Registry
	libMap   *resolve.LibMap
	libs     []coord.Lib

	cursor   int
	offset   int
	height   int
	expanded bool
}

func newLibListModel(reg *provider.Registry, lm *resolve.LibMap) libListModel {
	return libListModel{
		registry: reg,
		libMap:   lm,
		libs:     lm.Libs(),
		height:   15,
	}
}

func (m libListModel) Init() tea.Cmd { return nil }

func (m libListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.libs)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter", " ":
			m.expanded = !m.expanded
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m libListModel) View() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("%d libs", len(m.libs))))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.libs))
	for i := m.offset; i < end; i++ {
		lib := m.libs[i]
		sel, _ := m.libMap.Get(lib)
		line := fmt.Sprintf("%s %s", lib, m.registry.Summary(lib, sel.Coord))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.expanded && m.cursor < len(m.libs) {
		sel, _ := m.libMap.Get(m.libs[m.cursor])
		b.WriteString("\n")
		for _, p := range sel.Paths {
			b.WriteString(styleDim.Render("  path: "+p) + "\n")
		}
		for _, d := range sel.Dependents {
			b.WriteString(styleDim.Render("  required by: "+d.String()) + "\n")
		}
	}

	b.WriteString("\n" + styleDim.Render("↑/↓ move · enter details · q quit"))
	return b.String()
}
