package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/station"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// categoryColors matches the node fills of rendered maps.
var categoryColors = map[station.Category]lipgloss.Color{
	station.CategoryBypass:     colorBlue,
	station.CategoryNotAllowed: colorRed,
}

// =============================================================================
// StationListModel - Interactive machine map browser
// =============================================================================

// StationListModel is the bubbletea model of the browse command. It lists
// stations by depth and rank and cycles the category of the selected
// station. The model never touches the filesystem; Save reports whether the
// user asked to write the dataset back.
type StationListModel struct {
	Dataset station.Dataset
	Nodes   []layout.PositionedNode
	Cursor  int
	Height  int
	Offset  int
	Dirty   bool
	Save    bool

	opts layout.Options
}

// NewStationListModel lays out ds and creates the list model.
func NewStationListModel(ds station.Dataset, opts layout.Options) StationListModel {
	m := StationListModel{
		Dataset: ds,
		Height:  15,
		opts:    opts,
	}
	m.relayout()
	return m
}

// relayout recomputes the rows after an edit, ordered by depth then rank.
func (m *StationListModel) relayout() {
	res := layout.FromDataset(m.Dataset, m.opts)
	nodes := slices.Clone(res.PositionedNodes)
	slices.SortStableFunc(nodes, func(a, b layout.PositionedNode) int {
		if a.Depth != b.Depth {
			return a.Depth - b.Depth
		}
		return a.Rank - b.Rank
	})
	m.Nodes = nodes
}

func (m StationListModel) Init() tea.Cmd {
	return nil
}

func (m StationListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ", "c":
			m.cycleCategory()
		case "s":
			m.Save = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// cycleCategory moves the selected station to the next category and keeps
// the cursor on it.
func (m *StationListModel) cycleCategory() {
	if len(m.Nodes) == 0 {
		return
	}
	n := m.Nodes[m.Cursor]
	edited, err := m.Dataset.Edit(n.ID, station.Fields{Name: n.Name, StationNumber: n.StationNumber}, n.Category.Next())
	if err != nil {
		return
	}
	m.Dataset = edited
	m.Dirty = true
	m.relayout()
	for i, pn := range m.Nodes {
		if pn.ID == n.ID {
			m.Cursor = i
			break
		}
	}
}

func (m StationListModel) View() string {
	var b strings.Builder

	title := "Machine Map"
	if m.Dirty {
		title += " (modified)"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ cycle category  s save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(n.Depth),
			strconv.Itoa(n.ID),
			n.StationNumber,
			n.Name,
			string(n.Category),
			formatInputs(n.InputStations),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Depth", "ID", "Station", "Name", "Category", "Inputs").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			n := m.Nodes[idx]

			base := lipgloss.NewStyle()
			if color, ok := categoryColors[n.Category]; ok && col == 5 {
				base = base.Foreground(color)
			} else if col == 1 || col == 6 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatInputs(ids []int) string {
	if len(ids) == 0 {
		return "—"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
