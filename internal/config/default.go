package config

import _ "embed"

// DefaultYAML is the config written by "goap init".
//
//go:embed default.yaml
var DefaultYAML []byte
