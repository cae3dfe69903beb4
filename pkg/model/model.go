// Package model defines the node records that make up a security
// architecture dataset: system components, security controls, and risks.
//
// Nodes are plain data. Each node carries a unique ID, a display title,
// and a category used for visual grouping. Components additionally form a
// directed dependency graph via their To/From edge lists, and controls
// reference components, risks, and personas through [RefList] values that
// may use the "all"/"none" sentinel forms.
//
// A [Dataset] is an ordered collection of the three node kinds. Insertion
// order is preserved so that downstream grouping and rendering stay
// deterministic across runs.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidNodeID is returned when a node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned when a node with the same ID already
	// exists in the dataset. Node IDs must be unique per node kind.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrMissingTitle is returned when a node has no display title.
	ErrMissingTitle = errors.New("node title must not be empty")

	// ErrMissingCategory is returned when a node has no category.
	ErrMissingCategory = errors.New("node category must not be empty")
)

// Kind identifies a node variant within the dataset.
type Kind string

const (
	KindComponent Kind = "component"
	KindControl   Kind = "control"
	KindRisk      Kind = "risk"
)

// Container returns the identifier of the universal container for this
// kind, used when a control applies to every node of the kind
// (e.g. components="all" renders as a single edge to "components").
func (k Kind) Container() string { return string(k) + "s" }

// Node is the read-only view shared by all node variants. Grouping and
// rendering operate on this interface so they stay agnostic of the
// concrete record type.
type Node interface {
	NodeID() string
	NodeTitle() string
	NodeCategory() string
}

// Component is a system component node. Components form a directed
// dependency graph among themselves via To (outgoing) and From (incoming)
// edge lists. Both lists are kept so the dataset validator can check them
// for mutual consistency; the layout engine only follows To.
type Component struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory,omitempty"`
	To          []string `yaml:"to,omitempty"`
	From        []string `yaml:"from,omitempty"`
}

func (c *Component) NodeID() string       { return c.ID }
func (c *Component) NodeTitle() string    { return c.Title }
func (c *Component) NodeCategory() string { return c.Category }

// Control is a security control node. Its reference lists may be explicit
// ID lists or the "all"/"none" sentinel forms.
type Control struct {
	ID         string  `yaml:"id"`
	Title      string  `yaml:"title"`
	Category   string  `yaml:"category"`
	Components RefList `yaml:"components,omitempty"`
	Risks      RefList `yaml:"risks,omitempty"`
	Personas   RefList `yaml:"personas,omitempty"`
}

func (c *Control) NodeID() string       { return c.ID }
func (c *Control) NodeTitle() string    { return c.Title }
func (c *Control) NodeCategory() string { return c.Category }

// Risk is a risk node. Risks carry no cross-references of their own; the
// control→risk relation is inverted at read time where needed.
type Risk struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Category string `yaml:"category"`
}

func (r *Risk) NodeID() string       { return r.ID }
func (r *Risk) NodeTitle() string    { return r.Title }
func (r *Risk) NodeCategory() string { return r.Category }

// Dataset is an ordered collection of components, controls, and risks.
// The zero value is not usable - use NewDataset.
type Dataset struct {
	components []*Component
	controls   []*Control
	risks      []*Risk

	componentIdx map[string]*Component
	controlIdx   map[string]*Control
	riskIdx      map[string]*Risk
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		componentIdx: make(map[string]*Component),
		controlIdx:   make(map[string]*Control),
		riskIdx:      make(map[string]*Risk),
	}
}

func validateNode(n Node) error {
	if n.NodeID() == "" {
		return ErrInvalidNodeID
	}
	if n.NodeTitle() == "" {
		return fmt.Errorf("%s: %w", n.NodeID(), ErrMissingTitle)
	}
	if n.NodeCategory() == "" {
		return fmt.Errorf("%s: %w", n.NodeID(), ErrMissingCategory)
	}
	return nil
}

// AddComponent appends a component, preserving insertion order.
// Returns ErrDuplicateNodeID if the ID is already taken, or a validation
// error if a required field is empty.
func (d *Dataset) AddComponent(c *Component) error {
	if err := validateNode(c); err != nil {
		return err
	}
	if _, exists := d.componentIdx[c.ID]; exists {
		return fmt.Errorf("%s: %w", c.ID, ErrDuplicateNodeID)
	}
	d.components = append(d.components, c)
	d.componentIdx[c.ID] = c
	return nil
}

// AddControl appends a control, preserving insertion order.
func (d *Dataset) AddControl(c *Control) error {
	if err := validateNode(c); err != nil {
		return err
	}
	if _, exists := d.controlIdx[c.ID]; exists {
		return fmt.Errorf("%s: %w", c.ID, ErrDuplicateNodeID)
	}
	d.controls = append(d.controls, c)
	d.controlIdx[c.ID] = c
	return nil
}

// AddRisk appends a risk, preserving insertion order.
func (d *Dataset) AddRisk(r *Risk) error {
	if err := validateNode(r); err != nil {
		return err
	}
	if _, exists := d.riskIdx[r.ID]; exists {
		return fmt.Errorf("%s: %w", r.ID, ErrDuplicateNodeID)
	}
	d.risks = append(d.risks, r)
	d.riskIdx[r.ID] = r
	return nil
}

// Components returns all components in insertion order.
// The returned slice must not be modified.
func (d *Dataset) Components() []*Component { return d.components }

// Controls returns all controls in insertion order.
func (d *Dataset) Controls() []*Control { return d.controls }

// Risks returns all risks in insertion order.
func (d *Dataset) Risks() []*Risk { return d.risks }

// Component returns the component with the given ID, or nil and false.
func (d *Dataset) Component(id string) (*Component, bool) {
	c, ok := d.componentIdx[id]
	return c, ok
}

// Control returns the control with the given ID, or nil and false.
func (d *Dataset) Control(id string) (*Control, bool) {
	c, ok := d.controlIdx[id]
	return c, ok
}

// Risk returns the risk with the given ID, or nil and false.
func (d *Dataset) Risk(id string) (*Risk, bool) {
	r, ok := d.riskIdx[id]
	return r, ok
}

// HasComponent reports whether a component with the given ID exists.
func (d *Dataset) HasComponent(id string) bool { _, ok := d.componentIdx[id]; return ok }

// HasRisk reports whether a risk with the given ID exists.
func (d *Dataset) HasRisk(id string) bool { _, ok := d.riskIdx[id]; return ok }

// ComponentIDs returns all component IDs in insertion order.
func (d *Dataset) ComponentIDs() []string {
	ids := make([]string, len(d.components))
	for i, c := range d.components {
		ids[i] = c.ID
	}
	return ids
}

// RiskIDs returns all risk IDs in insertion order.
func (d *Dataset) RiskIDs() []string {
	ids := make([]string, len(d.risks))
	for i, r := range d.risks {
		ids[i] = r.ID
	}
	return ids
}

// ComponentNodes returns the components as the generic Node view.
func (d *Dataset) ComponentNodes() []Node {
	nodes := make([]Node, len(d.components))
	for i, c := range d.components {
		nodes[i] = c
	}
	return nodes
}

// ControlNodes returns the controls as the generic Node view.
func (d *Dataset) ControlNodes() []Node {
	nodes := make([]Node, len(d.controls))
	for i, c := range d.controls {
		nodes[i] = c
	}
	return nodes
}

// RiskNodes returns the risks as the generic Node view.
func (d *Dataset) RiskNodes() []Node {
	nodes := make([]Node, len(d.risks))
	for i, r := range d.risks {
		nodes[i] = r
	}
	return nodes
}

// ComponentAdjacency builds the forward adjacency map (component ID →
// successor IDs) from the components' To edge lists. Edges pointing at
// unknown components are dropped.
func (d *Dataset) ComponentAdjacency() map[string][]string {
	adj := make(map[string][]string, len(d.components))
	for _, c := range d.components {
		for _, to := range c.To {
			if d.HasComponent(to) {
				adj[c.ID] = append(adj[c.ID], to)
			}
		}
	}
	return adj
}
