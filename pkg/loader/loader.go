// Package loader reads a security architecture dataset from YAML.
//
// The document carries three top-level sequences - components, controls,
// risks - matching the model records. Scalar-or-list coercion for the
// control reference fields and the "all"/"none" sentinel forms are
// handled by the model types; the loader enforces ID uniqueness, ID
// safety, and required non-empty fields, so downstream stages can assume
// a structurally valid collection.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/secmap/pkg/errors"
	"github.com/matzehuels/secmap/pkg/model"
)

// document is the YAML shape of a dataset file.
type document struct {
	Components []*model.Component `yaml:"components"`
	Controls   []*model.Control   `yaml:"controls"`
	Risks      []*model.Risk      `yaml:"risks"`
}

// LoadFile reads and parses a dataset from the YAML file at path.
func LoadFile(path string) (*model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read model file %s", path)
	}
	ds, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a dataset from YAML bytes and validates it into a
// model.Dataset.
func Parse(data []byte) (*model.Dataset, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "decode model")
	}

	ds := model.NewDataset()
	for _, c := range doc.Components {
		if err := addComponent(ds, c); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.Controls {
		if err := errors.ValidateNodeID(c.ID); err != nil {
			return nil, err
		}
		if err := ds.AddControl(c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "control %q", c.ID)
		}
	}
	for _, r := range doc.Risks {
		if err := errors.ValidateNodeID(r.ID); err != nil {
			return nil, err
		}
		if err := ds.AddRisk(r); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "risk %q", r.ID)
		}
	}
	return ds, nil
}

func addComponent(ds *model.Dataset, c *model.Component) error {
	if err := errors.ValidateNodeID(c.ID); err != nil {
		return err
	}
	if err := ds.AddComponent(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidModel, err, "component %q", c.ID)
	}
	return nil
}
