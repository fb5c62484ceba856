package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vogtb/go-spreadsheet/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Settings is the format-agnostic result of loading a settings file
type Settings struct {
	DecimalPlaces *int
	Format        *string
	Encoding      *string
	LogLevel      *string
	LogFormat     *string
}

// fileRoot mirrors the top level of a settings file
type fileRoot struct {
	DecimalPlaces *int      `hcl:"decimal_places,optional"`
	Format        *string   `hcl:"format,optional"`
	Encoding      *string   `hcl:"encoding,optional"`
	Log           *logBlock `hcl:"log,block"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads and decodes the settings file at path, exposing the process
// environment to its expressions
func Load(ctx context.Context, path string) (*Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Settings loader started.", "path", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	settings, err := Parse(src, path, os.Environ())
	if err != nil {
		return nil, err
	}
	logger.Debug("Settings loaded.", "path", path)
	return settings, nil
}

// Parse decodes settings from src. environ holds KEY=VALUE pairs that are
// readable as env.KEY from expressions.
func Parse(src []byte, filename string, environ []string) (*Settings, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(environ), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", filename, diags)
	}

	settings := &Settings{
		DecimalPlaces: root.DecimalPlaces,
		Format:        root.Format,
		Encoding:      root.Encoding,
	}
	if root.Log != nil {
		settings.LogLevel = root.Log.Level
		settings.LogFormat = root.Log.Format
	}
	return settings, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(environ),
		},
	}
}

// envObject builds the env object. names that cannot be written as an HCL
// attribute are skipped; later duplicates win like they do for a shell.
func envObject(environ []string) cty.Value {
	vars := make(map[string]cty.Value)
	for _, e := range environ {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 || !hclsyntax.ValidIdentifier(pair[0]) {
			continue
		}
		vars[pair[0]] = cty.StringVal(pair[1])
	}
	return cty.ObjectVal(vars)
}
