package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sentinel values accepted in reference lists. A list consisting solely
// of one of these strings (or a bare scalar) is treated as the sentinel,
// not as a node ID.
const (
	SentinelAll  = "all"
	SentinelNone = "none"
)

// RefList is a control's reference list: either an explicit list of node
// IDs, or one of the sentinel forms "all" (every node of the referenced
// kind) and "none"/empty (no nodes).
//
// RefList unmarshals from YAML as either a scalar ("all", "none", or a
// single ID) or a sequence of strings.
type RefList struct {
	ids []string
	all bool
	// none is implied by all==false && len(ids)==0
}

// Refs creates a reference list from IDs, normalizing the sentinel
// forms: Refs("all") is the universal list, Refs("none") and Refs() are
// the empty list.
func Refs(ids ...string) RefList { return fromStrings(ids) }

// AllRefs returns the universal "all" reference list.
func AllRefs() RefList { return RefList{all: true} }

// IsAll reports whether the list is the universal sentinel.
func (r RefList) IsAll() bool { return r.all }

// IsNone reports whether the list is empty or the "none" sentinel.
func (r RefList) IsNone() bool { return !r.all && len(r.ids) == 0 }

// IDs returns the explicit IDs, or nil for the sentinel forms.
// The returned slice must not be modified.
func (r RefList) IDs() []string {
	if r.all {
		return nil
	}
	return r.ids
}

// String renders the list for log and debug output.
func (r RefList) String() string {
	switch {
	case r.all:
		return SentinelAll
	case len(r.ids) == 0:
		return SentinelNone
	default:
		return fmt.Sprintf("%v", r.ids)
	}
}

// UnmarshalYAML accepts a scalar or a sequence. The sentinel strings may
// appear as a bare scalar ("components: all") or as a one-element list
// ("components: [all]").
func (r *RefList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*r = fromStrings([]string{s})
		return nil
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return err
		}
		*r = fromStrings(ids)
		return nil
	default:
		return fmt.Errorf("line %d: reference list must be a string or a list of strings", value.Line)
	}
}

// MarshalYAML emits the sentinel forms as bare scalars and explicit lists
// as sequences.
func (r RefList) MarshalYAML() (any, error) {
	switch {
	case r.all:
		return SentinelAll, nil
	case len(r.ids) == 0:
		return SentinelNone, nil
	default:
		return r.ids, nil
	}
}

func fromStrings(values []string) RefList {
	if len(values) == 1 {
		switch values[0] {
		case SentinelAll:
			return RefList{all: true}
		case SentinelNone, "":
			return RefList{}
		}
	}
	return RefList{ids: values}
}
