// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Type identifies how a module is constructed.
type Type string

// Module types supported by the loader.
const (
	TypeBuiltin Type = "builtin" // compiled into the binary, see RegisterBuiltin
	TypeLua     Type = "lua"     // Lua script in the module directory
)

// ManifestFile is the manifest file name inside a module directory.
const ManifestFile = "module.yaml"

// Manifest describes a module package.
type Manifest struct {
	Name        string     `yaml:"name" json:"name" jsonschema:"required,minLength=1,maxLength=64,pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$"`
	Version     string     `yaml:"version" json:"version" jsonschema:"required"`
	Type        Type       `yaml:"type" json:"type" jsonschema:"required,enum=builtin,enum=lua"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Intents     []string   `yaml:"intents,omitempty" json:"intents,omitempty"`
	Lua         *LuaConfig `yaml:"lua,omitempty" json:"lua,omitempty"`
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry" jsonschema:"required,minLength=1"`
}

// maxNameLength is the maximum allowed length for module names.
const maxNameLength = 64

// namePattern validates module names: must start with lowercase letter,
// followed by lowercase letters, digits, or hyphens, not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// intentPattern validates gateway intent names such as "GuildMessages".
var intentPattern = regexp.MustCompile(`^[A-Z][A-Za-z]*$`)

// ParseManifest parses and validates a module.yaml file.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, errManifest("manifest data is empty")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errManifest("invalid YAML: %v", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks manifest constraints.
func (m *Manifest) Validate() error {
	if !ValidName(m.Name) {
		return errManifest("name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", m.Name)
	}
	if len(m.Name) > maxNameLength {
		return errManifest("name must be %d characters or less, got %d", maxNameLength, len(m.Name))
	}

	if m.Version == "" {
		return errManifest("version is required")
	}
	if _, err := semver.StrictNewVersion(m.Version); err != nil {
		return errManifest("version %q is not a semantic version: %v", m.Version, err)
	}

	for _, intent := range m.Intents {
		if !intentPattern.MatchString(intent) {
			return errManifest("intent %q must be an UpperCamelCase gateway intent", intent)
		}
	}

	switch m.Type {
	case TypeBuiltin:
	case TypeLua:
		if m.Lua == nil || m.Lua.Entry == "" {
			return errManifest("lua.entry is required when type is lua")
		}
	default:
		return errManifest("type must be 'builtin' or 'lua', got %q", m.Type)
	}

	return nil
}

// ValidName reports whether name is a valid module name.
func ValidName(name string) bool {
	return name != "" && namePattern.MatchString(name)
}
