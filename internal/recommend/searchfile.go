// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/feastfit/pkg/types"
)

// SearchFile is the on-disk record of a search: the request, the scored
// results, and the compacted snapshot. It lets a user refine or coach
// against a past search without querying the upstream again.
type SearchFile struct {
	Request  types.SearchRequest      `yaml:"request"`
	Results  []types.RestaurantResult `yaml:"results"`
	Snapshot types.SearchSnapshot     `yaml:"snapshot"`
	Summary  SearchSummary            `yaml:"summary"`
}

// SearchSummary stores result statistics and a timestamp.
type SearchSummary struct {
	Total     int       `yaml:"total"`
	Fallback  bool      `yaml:"fallback"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteSearchFile saves a search and its results to a YAML file.
func WriteSearchFile(path string, req types.SearchRequest, results []types.RestaurantResult, now time.Time) error {
	sf := SearchFile{
		Request:  req,
		Results:  results,
		Snapshot: Snapshot(req, results, now),
		Summary: SearchSummary{
			Total:     len(results),
			Fallback:  len(results) == 1 && results[0].ID == fallbackID,
			Timestamp: now.UTC(),
		},
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("marshaling search file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSearchFile loads a previously saved search file from disk.
func ReadSearchFile(path string) (*SearchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading search file: %w", err)
	}
	var sf SearchFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing search file: %w", err)
	}
	return &sf, nil
}

// RefineRequest builds a refine request from the saved search.
func (sf *SearchFile) RefineRequest(message string) types.RefineRequest {
	return types.RefineRequest{
		Location:       sf.Request.Location,
		CaloriesTarget: sf.Request.CaloriesTarget,
		ProteinMin:     sf.Request.ProteinMin,
		Diet:           sf.Request.Diet,
		Query:          sf.Request.Query,
		RefineMessage:  message,
		Restaurants:    sf.Results,
	}
}
