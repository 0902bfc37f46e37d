package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// ValidateSettings validates raw config settings against the JSON schema.
func ValidateSettings(settings map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)

	return fmt.Errorf("config schema validation failed: %s", strings.Join(errs, "; "))
}

// Check validates cross-field rules the schema cannot express.
func (c Config) Check() error {
	if strings.TrimSpace(c.Domain) == "" {
		return fmt.Errorf("domain is required")
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database is required")
	}
	names := make([]string, 0, len(c.Probes))
	for name := range c.Probes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.Probes[name]
		switch p.Type {
		case ProbeTypeCommand:
			if len(p.Cmd) == 0 {
				return fmt.Errorf("probe %q: command probe requires cmd", name)
			}
		case ProbeTypeAgent:
			if p.Agent == "" && len(p.Cmd) == 0 {
				return fmt.Errorf("probe %q: agent probe requires agent or cmd", name)
			}
		default:
			return fmt.Errorf("probe %q: unknown type %q", name, p.Type)
		}
		if p.Timeout < 0 {
			return fmt.Errorf("probe %q: timeout must be >= 0", name)
		}
	}
	return nil
}
