package core

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryDef is one entry of the category master.
type CategoryDef struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories,omitempty"`
}

type categoryFile struct {
	Categories []CategoryDef `yaml:"categories"`
}

// CategoryMaster returns the suggested category list in master order.
// The master is advisory: it feeds input assistance, it does not
// constrain what a stored record may carry.
func CategoryMaster() ([]CategoryDef, error) {
	var f categoryFile
	if err := yaml.Unmarshal(categoriesYAML, &f); err != nil {
		return nil, fmt.Errorf("parse category master: %w", err)
	}
	return f.Categories, nil
}

// CategoryNames returns just the names of the category master, in
// master order.
func CategoryNames() ([]string, error) {
	defs, err := CategoryMaster()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names, nil
}
