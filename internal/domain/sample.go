package domain

import _ "embed"

// Sample is the catalogue written by "goap init".
//
//go:embed sample.yaml
var Sample []byte
