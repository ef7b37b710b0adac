package failure

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CodeEntry is one row of the reason-code knowledge table: what the code
// means, what to check, and what to ask the counterparty bank.
type CodeEntry struct {
	Meaning string   `yaml:"meaning" json:"meaning"`
	Checks  []string `yaml:"checks" json:"checks"`
	Ask     []string `yaml:"ask" json:"ask"`
}

// CodeTable maps ISO status reason codes (AC04, AM05, ...) to their
// diagnostic entries. Loaded once at startup and read-only afterwards, so
// concurrent lookups need no synchronization. The table is extended by
// editing the YAML document, not code.
type CodeTable map[string]CodeEntry

// LoadCodeTable reads the reason-code knowledge table. A missing file is a
// configuration error and should be fatal at startup.
func LoadCodeTable(path string) (CodeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reason-code table %s: %w", path, err)
	}

	var table CodeTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parsing reason-code table %s: %w", path, err)
	}
	return table, nil
}
