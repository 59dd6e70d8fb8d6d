package station

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// ErrNodeNotFound is returned by [EditNode] when no node carries the
// requested ID.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidCategory is returned by [ParseCategory] for unknown names.
var ErrInvalidCategory = errors.New("invalid category")

// Category classifies a node for display and operational purposes.
type Category string

const (
	CategoryNormal     Category = "normal"
	CategoryBypass     Category = "bypass"
	CategoryNotAllowed Category = "notAllowed"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryNormal, CategoryBypass, CategoryNotAllowed}

// ParseCategory accepts the canonical names plus the snake_case spelling used
// by older dashboard exports ("not_allowed").
func ParseCategory(s string) (Category, error) {
	switch s {
	case "", "normal":
		return CategoryNormal, nil
	case "bypass":
		return CategoryBypass, nil
	case "notAllowed", "not_allowed", "not-allowed":
		return CategoryNotAllowed, nil
	}
	return "", fmt.Errorf("%w: %q (must be one of: normal, bypass, notAllowed)", ErrInvalidCategory, s)
}

// Next cycles normal → bypass → notAllowed → normal.
func (c Category) Next() Category {
	i := slices.Index(Categories, c)
	return Categories[(i+1)%len(Categories)]
}

// MachineNode is one production station.
type MachineNode struct {
	ID            int    `json:"id" yaml:"id"`
	MachineID     string `json:"machine_id,omitempty" yaml:"machine_id,omitempty"`
	Name          string `json:"name" yaml:"name"`
	StationNumber string `json:"station_number" yaml:"station_number"`
	InputStations []int  `json:"input_stations" yaml:"input_stations"`
}

// Key returns the identifier used for bypass/not-allowed membership: the
// machine ID, or the decimal node ID when the machine ID is empty.
func (n MachineNode) Key() string {
	if n.MachineID != "" {
		return n.MachineID
	}
	return strconv.Itoa(n.ID)
}

// IsSource reports whether the node has no input stations.
func (n MachineNode) IsSource() bool { return len(n.InputStations) == 0 }

// Clone returns a copy that shares no slices with n.
func (n MachineNode) Clone() MachineNode {
	n.InputStations = slices.Clone(n.InputStations)
	return n
}

// Fields holds the editable display fields of a node.
type Fields struct {
	Name          string `json:"name"`
	StationNumber string `json:"station_number"`
}

// Dataset is the input document: the machine map and two classification lists.
type Dataset struct {
	Nodes          []MachineNode `json:"prod_machine_map" yaml:"prod_machine_map"`
	BypassList     []string      `json:"bypass_list" yaml:"bypass_list"`
	NotAllowedList []string      `json:"not_allowed_list" yaml:"not_allowed_list"`
}

// Index maps node IDs to their position in a node slice. When IDs repeat, the
// first record wins.
type Index map[int]int

// NewIndex builds an Index over nodes.
func NewIndex(nodes []MachineNode) Index {
	idx := make(Index, len(nodes))
	for i, n := range nodes {
		if _, dup := idx[n.ID]; !dup {
			idx[n.ID] = i
		}
	}
	return idx
}

// Lookup returns the first node with the given ID.
func (idx Index) Lookup(nodes []MachineNode, id int) (MachineNode, bool) {
	i, ok := idx[id]
	if !ok {
		return MachineNode{}, false
	}
	return nodes[i], true
}

// Has reports whether id belongs to an indexed node.
func (idx Index) Has(id int) bool {
	_, ok := idx[id]
	return ok
}

// IDSet is an unordered set of machine keys.
type IDSet map[string]struct{}

// NewIDSet builds a set from a list, dropping duplicates.
func NewIDSet(ids []string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Classify resolves a node's category. Not-allowed membership is checked
// before bypass membership.
func Classify(n MachineNode, bypass, notAllowed IDSet) Category {
	key := n.Key()
	if notAllowed.Has(key) {
		return CategoryNotAllowed
	}
	if bypass.Has(key) {
		return CategoryBypass
	}
	return CategoryNormal
}

// Category resolves the category of n against the dataset's lists.
func (d Dataset) Category(n MachineNode) Category {
	return Classify(n, NewIDSet(d.BypassList), NewIDSet(d.NotAllowedList))
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	nodes := make([]MachineNode, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = n.Clone()
	}
	return Dataset{
		Nodes:          nodes,
		BypassList:     slices.Clone(d.BypassList),
		NotAllowedList: slices.Clone(d.NotAllowedList),
	}
}

// EditNode returns copies of nodes, bypass and notAllowed in which every node
// with the given ID has its name and station number replaced, and the node's
// key has been removed from both lists then re-added to the one matching
// category. Inputs are never modified.
//
// If no node has the ID, EditNode returns unmodified copies and
// [ErrNodeNotFound].
func EditNode(nodes []MachineNode, nodeID int, fields Fields, bypass, notAllowed []string, category Category) ([]MachineNode, []string, []string, error) {
	out := make([]MachineNode, len(nodes))
	key := ""
	found := false
	for i, n := range nodes {
		n = n.Clone()
		if n.ID == nodeID {
			if !found {
				key = n.Key()
				found = true
			}
			n.Name = fields.Name
			n.StationNumber = fields.StationNumber
		}
		out[i] = n
	}

	if !found {
		return out, slices.Clone(bypass), slices.Clone(notAllowed), fmt.Errorf("%w: %d", ErrNodeNotFound, nodeID)
	}

	notKey := func(s string) bool { return s == key }
	newBypass := slices.DeleteFunc(slices.Clone(bypass), notKey)
	newNotAllowed := slices.DeleteFunc(slices.Clone(notAllowed), notKey)

	switch category {
	case CategoryBypass:
		newBypass = append(newBypass, key)
	case CategoryNotAllowed:
		newNotAllowed = append(newNotAllowed, key)
	}
	return out, newBypass, newNotAllowed, nil
}

// Edit applies [EditNode] to the dataset and returns the edited copy.
func (d Dataset) Edit(nodeID int, fields Fields, category Category) (Dataset, error) {
	nodes, bypass, notAllowed, err := EditNode(d.Nodes, nodeID, fields, d.BypassList, d.NotAllowedList, category)
	return Dataset{Nodes: nodes, BypassList: bypass, NotAllowedList: notAllowed}, err
}
