package model

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDataset_AddComponent(t *testing.T) {
	tests := []struct {
		name    string
		comp    *Component
		wantErr error
	}{
		{
			name: "Valid",
			comp: &Component{ID: "comp-db", Title: "Database", Category: "Data"},
		},
		{
			name:    "EmptyID",
			comp:    &Component{Title: "Database", Category: "Data"},
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "EmptyTitle",
			comp:    &Component{ID: "comp-db", Category: "Data"},
			wantErr: ErrMissingTitle,
		},
		{
			name:    "EmptyCategory",
			comp:    &Component{ID: "comp-db", Title: "Database"},
			wantErr: ErrMissingCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDataset()
			err := d.AddComponent(tt.comp)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddComponent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDataset_DuplicateID(t *testing.T) {
	d := NewDataset()
	if err := d.AddControl(&Control{ID: "ctrl-mfa", Title: "MFA", Category: "Access"}); err != nil {
		t.Fatalf("AddControl() error = %v", err)
	}
	err := d.AddControl(&Control{ID: "ctrl-mfa", Title: "MFA again", Category: "Access"})
	if !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddControl() error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestDataset_InsertionOrder(t *testing.T) {
	d := NewDataset()
	ids := []string{"comp-c", "comp-a", "comp-b"}
	for _, id := range ids {
		if err := d.AddComponent(&Component{ID: id, Title: id, Category: "X"}); err != nil {
			t.Fatalf("AddComponent(%s) error = %v", id, err)
		}
	}

	got := d.ComponentIDs()
	for i, id := range ids {
		if got[i] != id {
			t.Errorf("ComponentIDs()[%d] = %s, want %s", i, got[i], id)
		}
	}
}

func TestDataset_ComponentAdjacency_DropsDangling(t *testing.T) {
	d := NewDataset()
	d.AddComponent(&Component{ID: "a", Title: "A", Category: "X", To: []string{"b", "ghost"}})
	d.AddComponent(&Component{ID: "b", Title: "B", Category: "X"})

	adj := d.ComponentAdjacency()
	if len(adj["a"]) != 1 || adj["a"][0] != "b" {
		t.Errorf("ComponentAdjacency()[a] = %v, want [b]", adj["a"])
	}
}

func TestRefList_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantAll  bool
		wantNone bool
		wantIDs  int
	}{
		{name: "ScalarAll", yaml: `all`, wantAll: true},
		{name: "ListAll", yaml: `[all]`, wantAll: true},
		{name: "ScalarNone", yaml: `none`, wantNone: true},
		{name: "ListNone", yaml: `[none]`, wantNone: true},
		{name: "EmptyList", yaml: `[]`, wantNone: true},
		{name: "Explicit", yaml: `[comp-a, comp-b]`, wantIDs: 2},
		{name: "SingleID", yaml: `comp-a`, wantIDs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RefList
			if err := yaml.Unmarshal([]byte(tt.yaml), &r); err != nil {
				t.Fatalf("Unmarshal(%q) error = %v", tt.yaml, err)
			}
			if r.IsAll() != tt.wantAll {
				t.Errorf("IsAll() = %v, want %v", r.IsAll(), tt.wantAll)
			}
			if r.IsNone() != tt.wantNone {
				t.Errorf("IsNone() = %v, want %v", r.IsNone(), tt.wantNone)
			}
			if len(r.IDs()) != tt.wantIDs {
				t.Errorf("len(IDs()) = %d, want %d", len(r.IDs()), tt.wantIDs)
			}
		})
	}
}

func TestRefList_RoundTrip(t *testing.T) {
	in := Refs("comp-a", "comp-b")
	data, err := yaml.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out RefList
	if err := yaml.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(out.IDs()) != 2 || out.IDs()[0] != "comp-a" {
		t.Errorf("round trip IDs = %v, want [comp-a comp-b]", out.IDs())
	}
}

func TestKind_Container(t *testing.T) {
	if got := KindComponent.Container(); got != "components" {
		t.Errorf("Container() = %s, want components", got)
	}
	if got := KindRisk.Container(); got != "risks" {
		t.Errorf("Container() = %s, want risks", got)
	}
}
