// Package reference provides the static disease->symptoms lookup loaded at startup
package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type diseaseRecord struct {
	Name     string   `json:"name"`
	Symptoms []string `json:"symptoms"`
}

// Dataset - иммутабельный справочник, после Load только читается
type Dataset struct {
	symptoms map[string][]string
}

func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read reference dataset %q: %w", path, err)
	}

	var records []diseaseRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse reference dataset %q: %w", path, err)
	}

	ds := &Dataset{symptoms: make(map[string][]string, len(records))}
	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("reference dataset %q contains a record without a name", path)
		}
		ds.symptoms[r.Name] = r.Symptoms
	}

	return ds, nil
}

// Symptoms - отсутствие болезни в справочнике не ошибка: отдаем пустой список
func (d *Dataset) Symptoms(disease string) ([]string, bool) {
	s, ok := d.symptoms[disease]
	if !ok {
		return nil, false
	}
	return s, true
}

func (d *Dataset) Len() int {
	return len(d.symptoms)
}
