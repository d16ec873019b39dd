package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/yaml"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	cfg, err := yaml.LoadRecipeFile(c.Recipe)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	recipe, err := cfg.Build(deps.Engine, harvest.WithConverter(deps.Converter))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	fields := recipe.Fields()
	fmt.Fprintf(deps.Stdout, "recipe %q: %d fields OK\n", recipe.Name(), fields.Len())
	for _, f := range fields.Fields() {
		sel, _ := fields.Selector(f.Name)
		line := fmt.Sprintf("  %-16s %-8s %s", f.Name, f.Mode, sel.CSS)
		if sel.HasIndex() {
			line += fmt.Sprintf("  (match #%d)", sel.Index)
		}
		if f.Mode == harvest.ModeAttr {
			line += fmt.Sprintf("  @%s", f.Attr)
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}

// message returns the user-facing text of err. Application errors carry
// their own message; anything else is shown as is.
func message(err error) string {
	if harvest.ErrorCode(err) == harvest.EINTERNAL {
		return err.Error()
	}
	return harvest.ErrorMessage(err)
}
