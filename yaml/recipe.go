// Package yaml loads recipe definitions from YAML files.
//
// A recipe file names the recipe and maps field names to selectors. Field
// order in the file is the field order of the recipe:
//
//	name: chapters
//	fields:
//	  title: "h4[1]"
//	  content: "div.fr-view"
//	  next:
//	    selector: "a.next[1]"
//	    mode: attr
//	    attr: href
package yaml

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/harvest"
	"gopkg.in/yaml.v3"
)

// LoadRecipeFile reads and decodes a recipe file.
func LoadRecipeFile(path string) (*harvest.RecipeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe file: %w", err)
	}
	return DecodeRecipe(bytes.NewReader(data))
}

// DecodeRecipe decodes a recipe from r.
// Returns EINVALID for malformed documents and EDUPLICATEFIELD when a field
// name is repeated.
func DecodeRecipe(r io.Reader) (*harvest.RecipeConfig, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, harvest.Errorf(harvest.EINVALID, "recipe file is empty")
		}
		return nil, harvest.Errorf(harvest.EINVALID, "parse recipe yaml: %v", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, harvest.Errorf(harvest.EINVALID, "line %d: recipe must be a mapping", root.Line)
	}

	cfg := &harvest.RecipeConfig{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "name":
			if err := value.Decode(&cfg.Name); err != nil {
				return nil, harvest.Errorf(harvest.EINVALID, "line %d: name: %v", value.Line, err)
			}
		case "fields":
			fields, err := decodeFields(value)
			if err != nil {
				return nil, err
			}
			cfg.Fields = fields
		default:
			return nil, harvest.Errorf(harvest.EINVALID, "line %d: unknown key %q", key.Line, key.Value)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFields walks the mapping node directly because decoding into a Go
// map would lose the declaration order.
func decodeFields(node *yaml.Node) ([]harvest.Field, error) {
	if node.Kind != yaml.MappingNode {
		return nil, harvest.Errorf(harvest.EINVALID, "line %d: fields must be a mapping of name to selector", node.Line)
	}

	seen := make(map[string]bool)
	fields := make([]harvest.Field, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return nil, harvest.Errorf(harvest.EDUPLICATEFIELD, "line %d: duplicate field name %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		field := harvest.Field{Name: key.Value}
		switch value.Kind {
		case yaml.ScalarNode:
			field.Selector = value.Value
		case yaml.MappingNode:
			if err := value.Decode(&field); err != nil {
				return nil, harvest.Errorf(harvest.EINVALID, "line %d: field %q: %v", value.Line, key.Value, err)
			}
			field.Name = key.Value
			if field.Attr != "" && field.Mode == "" {
				field.Mode = harvest.ModeAttr
			}
		default:
			return nil, harvest.Errorf(harvest.EINVALID, "line %d: field %q must be a selector or a mapping", value.Line, key.Value)
		}

		fields = append(fields, field)
	}

	return fields, nil
}
