// Command protocol-schema writes a JSON schema describing every protocol message.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"ufo-shooter/internal/protocol"
)

// Single-key wrappers give each struct variant its externally tagged shape.
type (
	joinedVariant struct {
		Joined protocol.Joined `json:"Joined"`
	}
	updatePositionVariant struct {
		UpdatePosition protocol.UpdatePosition `json:"UpdatePosition"`
	}
	spawnEnemyVariant struct {
		SpawnEnemy protocol.SpawnEnemy `json:"SpawnEnemy"`
	}
	confirmDamagedVariant struct {
		ConfirmDamaged protocol.ConfirmDamaged `json:"ConfirmDamaged"`
	}
	inputVariant struct {
		Input protocol.Input `json:"Input"`
	}
	controlVariant struct {
		Control protocol.Control `json:"Control"`
	}
	resizeVariant struct {
		Resize protocol.Resize `json:"Resize"`
	}
)

var unitVariants = []protocol.Kind{
	protocol.KindGameReady,
	protocol.KindGameStart,
	protocol.KindStartMatch,
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	var variants []*jsonschema.Schema
	for _, kind := range unitVariants {
		variants = append(variants, &jsonschema.Schema{
			Type:  "string",
			Title: string(kind),
			Enum:  []interface{}{string(kind)},
		})
	}

	for _, v := range []struct {
		kind protocol.Kind
		val  interface{}
	}{
		{protocol.KindJoined, new(joinedVariant)},
		{protocol.KindUpdatePosition, new(updatePositionVariant)},
		{protocol.KindSpawnEnemy, new(spawnEnemyVariant)},
		{protocol.KindConfirmDamaged, new(confirmDamagedVariant)},
		{protocol.KindInput, new(inputVariant)},
		{protocol.KindControl, new(controlVariant)},
		{protocol.KindResize, new(resizeVariant)},
	} {
		s := reflector.Reflect(v.val)
		s.Version = ""
		s.Title = string(v.kind)
		variants = append(variants, s)
	}

	return &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "UFO Shooter Protocol",
		Description: "Externally tagged messages exchanged over the /ws endpoint",
		OneOf:       variants,
	}
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
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
