// Package config provides configuration loading and management for goap.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Domain    string                 `json:"domain"              mapstructure:"domain"`
	Database  string                 `json:"database"            mapstructure:"database"`
	Planner   PlannerConfig          `json:"planner"             mapstructure:"planner"`
	Probes    map[string]ProbeConfig `json:"probes,omitempty"    mapstructure:"probes"`
	Retention RetentionPolicy        `json:"retention,omitempty" mapstructure:"retention"`
}

// PlannerConfig tunes search and resolution.
type PlannerConfig struct {
	MaxExpansions   int  `json:"max_expansions,omitempty" mapstructure:"max_expansions"`
	PersistResolved bool `json:"persist_resolved"         mapstructure:"persist_resolved"`
}

// ProbeConfig describes how to resolve a condition expensively.
type ProbeConfig struct {
	Type    string        `json:"type"              mapstructure:"type"`
	Cmd     []string      `json:"cmd,omitempty"     mapstructure:"cmd"`
	Agent   string        `json:"agent,omitempty"   mapstructure:"agent"`
	Model   string        `json:"model,omitempty"   mapstructure:"model"`
	UseTTY  *bool         `json:"use_tty,omitempty" mapstructure:"use_tty"`
	Timeout time.Duration `json:"timeout,omitempty" mapstructure:"timeout"`
}

// RetentionPolicy defines how many old planning runs to keep.
type RetentionPolicy struct {
	KeepLast int `json:"keep_last,omitempty" mapstructure:"keep_last"`
	KeepDays int `json:"keep_days,omitempty" mapstructure:"keep_days"`
}

const (
	ProbeTypeCommand = "command"
	ProbeTypeAgent   = "agent"
)
