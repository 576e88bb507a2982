package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// Record is one raw quote record as found in the input file.
// Every field is optional; field names match the upstream dataset.
type Record struct {
	Quote      string   `json:"Quote"`
	Author     string   `json:"Author"`
	Category   string   `json:"Category"`
	Tags       []string `json:"Tags"`
	Popularity int      `json:"Popularity"`
}

// Load reads a JSON array of raw quote records from path.
// A missing or unparseable file is a fatal input error: nothing in the
// pipeline can proceed without the corpus.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes file: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse quotes file %s: %w", path, err)
	}

	return records, nil
}
