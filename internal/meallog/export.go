// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meallog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const exportLimit = 100000

// Export writes every log for userID, newest first, to w in format.
func (s *Store) Export(ctx context.Context, userID, format string, w io.Writer) error {
	logs, err := s.ListByUser(ctx, userID, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	switch format {
	case FormatYAML, "":
		data, err := yaml.Marshal(logs)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(logs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
