// Command schema emits JSON schemas for the websocket wire protocol so
// client implementations can validate their payloads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"phantom-box/server/internal/assets"
	"phantom-box/server/internal/emotion"
)

type schemaTarget struct {
	Name  string
	Value any
	Title string
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "", "directory to write the JSON schemas")
	flag.Parse()

	if outDir == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	targets := []schemaTarget{
		{Name: "scene-config.schema.json", Value: new(emotion.SceneConfig), Title: "Phantom Box Scene Config"},
		{Name: "asset-descriptor.schema.json", Value: new(assets.Descriptor), Title: "Phantom Box Asset Descriptor"},
		{Name: "resolved-scene.schema.json", Value: new(assets.ResolvedScene), Title: "Phantom Box Resolved Scene"},
		{Name: "asset-manifest.schema.json", Value: new(assets.Manifest), Title: "Phantom Box Asset Manifest"},
	}

	for _, target := range targets {
		if err := writeSchema(filepath.Join(outDir, target.Name), target); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", target.Name, err)
			os.Exit(1)
		}
	}
}

func writeSchema(outPath string, target schemaTarget) error {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(target.Value)
	schema.Title = target.Title

	data, err := json.MarshalIndent(schema, "", "  ")
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
