// Command schema writes the JSON Schema documents for netsim's
// wire-adjacent types (InitParams, TickParams, DebugState, and the
// transport/proto envelope) to a directory, for hosts that validate
// configuration or logged state without linking netsim's Go types.
// Grounded on the teacher's effects/catalog/cmd/schema/main.go
// flag-based -out path and temp-file-then-rename write pattern.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"netsim/schema"
)

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schema documents into")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	documents := map[string]func() (*jsonschema.Schema, error){
		"init-params.json":        schema.BuildInitParams,
		"tick-params.json":        schema.BuildTickParams,
		"debug-state.json":        schema.BuildDebugState,
		"transport-envelope.json": schema.BuildTransportEnvelope,
	}

	for name, build := range documents {
		s, err := build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "build %s: %v\n", name, err)
			os.Exit(1)
		}
		if err := writeSchema(filepath.Join(outDir, name), s); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func writeSchema(outPath string, s *jsonschema.Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
