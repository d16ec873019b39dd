package harvest

// RecipeConfig is the declarative form of a Recipe, as loaded from a file.
type RecipeConfig struct {
	Name   string
	Fields []Field
}

// Validate returns an error if the config contains invalid fields.
// Selector syntax is checked by Build.
func (c *RecipeConfig) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "recipe name required")
	}
	if len(c.Fields) == 0 {
		return Errorf(EINVALID, "recipe %q: at least one field required", c.Name)
	}
	return nil
}

// Build compiles the config into a Recipe.
func (c *RecipeConfig) Build(engine SelectorEngine, opts ...RecipeOption) (*Recipe, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	fields, err := NewFieldMap(engine, c.Fields...)
	if err != nil {
		return nil, err
	}

	return NewRecipe(c.Name, fields, opts...)
}
