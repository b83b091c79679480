// Package lookup loads the flat option tables consulted by validators.
package lookup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options reads a newline-delimited table file, mapping the 1-based line
// number to the line's text. These files are the source of truth for the
// numbered option lists shown to users, so ordering is significant.
func Options(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup table: %w", err)
	}
	table := make(map[int]string)
	for i, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		table[i+1] = line
	}
	return table, nil
}

// Tables holds every option table for one deployment, loaded once at start.
type Tables struct {
	Provinces    map[int]string
	Ages         map[int]string
	Genders      map[int]string
	Destinations map[int]string
	Reasons      map[int]string
}

// Load reads the standard table files from dir. Destination and reason
// tables are only present for the higher-education deployment; a missing
// file leaves the corresponding table nil.
func Load(dir string) (*Tables, error) {
	t := &Tables{}
	required := []struct {
		name  string
		table *map[int]string
	}{
		{"provinces.txt", &t.Provinces},
		{"ages.txt", &t.Ages},
		{"gender.txt", &t.Genders},
	}
	for _, f := range required {
		table, err := Options(filepath.Join(dir, f.name))
		if err != nil {
			return nil, err
		}
		*f.table = table
	}
	optional := []struct {
		name  string
		table *map[int]string
	}{
		{"destinations.txt", &t.Destinations},
		{"reasons.txt", &t.Reasons},
	}
	for _, f := range optional {
		table, err := Options(filepath.Join(dir, f.name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		*f.table = table
	}
	return t, nil
}

// ProvinceDisplay maps a province code to its display name, used by the
// education deployment when confirming returning-user details.
var ProvinceDisplay = map[string]string{
	"ec": "EASTERN CAPE",
	"fs": "FREE STATE",
	"gt": "GAUTENG",
	"lp": "LIMPOPO",
	"mp": "MPUMALANGA",
	"nc": "NORTHERN CAPE",
	"nl": "KWAZULU-NATAL",
	"nw": "NORTH WEST",
	"wc": "WESTERN CAPE",
}

// UniversityData is province code -> institution -> campuses, as produced by
// the seed command from the department's CSV exports.
type UniversityData map[string]map[string][]string

func LoadUniversityData(path string) (UniversityData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read university data: %w", err)
	}
	var out UniversityData
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse university data: %w", err)
	}
	return out, nil
}

func WriteUniversityData(path string, data UniversityData) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
