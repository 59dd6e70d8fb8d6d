package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stationmap/pkg/layout"
	"github.com/matzehuels/stationmap/pkg/station"
)

func testDataset() station.Dataset {
	return station.Dataset{
		Nodes: []station.MachineNode{
			{ID: 1, Name: "Press", StationNumber: "10"},
			{ID: 2, Name: "Weld", StationNumber: "20", InputStations: []int{1}},
			{ID: 3, Name: "Spare", StationNumber: "90"},
		},
		BypassList: []string{"2"},
	}
}

func press(m tea.Model, msg tea.KeyMsg) (StationListModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(StationListModel), cmd
}

func ids(nodes []layout.PositionedNode) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestStationListOrder(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})
	if got, want := ids(m.Nodes), []int{1, 3, 2}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestStationListNavigation(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("cursor moved above first row: %d", m.Cursor)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
}

func TestStationListCycleCategory(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})
	m.Cursor = 2 // Weld, bypassed

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Dirty {
		t.Error("model not marked dirty")
	}
	if m.Nodes[m.Cursor].ID != 2 {
		t.Errorf("cursor left the edited station: %+v", m.Nodes[m.Cursor])
	}
	if got := m.Nodes[m.Cursor].Category; got != station.CategoryNotAllowed {
		t.Errorf("category = %q, want notAllowed", got)
	}
	if len(m.Dataset.BypassList) != 0 || !slices.Equal(m.Dataset.NotAllowedList, []string{"2"}) {
		t.Errorf("lists = %v / %v", m.Dataset.BypassList, m.Dataset.NotAllowedList)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.Nodes[m.Cursor].Category; got != station.CategoryNormal {
		t.Errorf("category after second cycle = %q, want normal", got)
	}
}

func TestStationListSaveAndQuit(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})

	saved, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if !saved.Save || cmd == nil {
		t.Errorf("s: Save = %v, cmd = %v", saved.Save, cmd)
	}

	quit, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if quit.Save || cmd == nil {
		t.Errorf("q: Save = %v, cmd = %v", quit.Save, cmd)
	}
}

func TestStationListWindowSize(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	if h := next.(StationListModel).Height; h != 5 {
		t.Errorf("Height = %d, want 5", h)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if h := next.(StationListModel).Height; h != 34 {
		t.Errorf("Height = %d, want 34", h)
	}
}

func TestStationListView(t *testing.T) {
	m := NewStationListModel(testDataset(), layout.Options{})
	view := m.View()
	for _, want := range []string{"Machine Map", "Press", "Weld", "bypass", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestStationListEmpty(t *testing.T) {
	m := NewStationListModel(station.Dataset{}, layout.Options{})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Dirty {
		t.Error("empty list became dirty")
	}
}

func TestFormatInputs(t *testing.T) {
	if got := formatInputs(nil); got != "—" {
		t.Errorf("formatInputs(nil) = %q", got)
	}
	if got := formatInputs([]int{4, 7}); got != "4, 7" {
		t.Errorf("formatInputs = %q", got)
	}
}
