package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"boards/internal/etl"
)

// ── JSON File Source ────────────────────────────────────────
// Reads records from a JSON array of objects or of strings. dataPath
// ("data.items") points at a nested array.

type jsonFileSource struct{}

func init() { etl.RegisterSource(&jsonFileSource{}) }

// ValueField is the field name given to bare strings in an array.
const ValueField = "value"

func (s *jsonFileSource) Spec() etl.SourceSpec {
	return etl.SourceSpec{
		Type:       "json_file",
		Label:      "JSON File",
		Extensions: []string{".json"},
	}
}

func (s *jsonFileSource) Discover(ctx context.Context, cfg etl.SourceConfig) (*etl.Schema, error) {
	records, err := readJSONFile(cfg)
	if err != nil {
		return nil, err
	}
	return inferSchema(records), nil
}

func (s *jsonFileSource) Read(ctx context.Context, cfg etl.SourceConfig) (<-chan etl.Record, <-chan error) {
	out := make(chan etl.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		records, err := readJSONFile(cfg)
		if err != nil {
			errCh <- err
			return
		}
		for _, rec := range records {
			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errCh
}

func readJSONFile(cfg etl.SourceConfig) ([]etl.Record, error) {
	filePath, _ := cfg["filePath"].(string)
	if filePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if dataPath, ok := cfg["dataPath"].(string); ok && dataPath != "" {
		for _, part := range strings.Split(dataPath, ".") {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid data path: %q not found", part)
			}
			raw = m[part]
		}
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("parse json: expected an array")
	}
	return toRecords(items), nil
}

func toRecords(items []any) []etl.Record {
	records := make([]etl.Record, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			records = append(records, etl.Record{Data: v})
		case string, float64, bool:
			records = append(records, etl.Record{Data: map[string]any{ValueField: v}})
		}
	}
	return records
}

func inferSchema(records []etl.Record) *etl.Schema {
	types := map[string]string{}
	for _, r := range records {
		for k, v := range r.Data {
			t := "text"
			switch v.(type) {
			case float64:
				t = "number"
			case bool:
				t = "boolean"
			}
			if prev, ok := types[k]; !ok || prev == t {
				types[k] = t
			} else {
				types[k] = "text"
			}
		}
	}
	names := make([]string, 0, len(types))
	for k := range types {
		names = append(names, k)
	}
	sort.Strings(names)

	schema := &etl.Schema{Fields: make([]etl.Field, len(names))}
	for i, n := range names {
		schema.Fields[i] = etl.Field{Name: n, Type: types[n]}
	}
	return schema
}
