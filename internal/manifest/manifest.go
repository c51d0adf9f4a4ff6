// Package manifest records what a collect run produced so later steps can
// find the outputs without re-deriving paths.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bighogz/sentiment-features/internal/models"
)

// Manifest is written next to the final table as data/{T}_manifest.json.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Ticker    string    `json:"ticker"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	Format    string    `json:"format"`
	WrittenAt time.Time `json:"_written_at"`

	// Outputs maps a table name (news, social, features) to its file path.
	Outputs map[string]string `json:"outputs"`
	// Rows maps a table or stage name to its row count.
	Rows map[string]int `json:"rows"`

	NewsCoverage   models.Coverage `json:"news_coverage"`
	SocialCoverage models.Coverage `json:"social_coverage"`
}

// Path returns the manifest location for ticker under dir.
func Path(dir, ticker string) string {
	return filepath.Join(dir, "data", ticker+"_manifest.json")
}

// Write stamps WrittenAt and stores m at path, creating parent directories.
func Write(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	m.WrittenAt = time.Now().UTC().Truncate(time.Second)
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0644)
}

// Read loads a manifest. maxAge > 0 rejects manifests written longer ago.
func Read(path string, maxAge time.Duration) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.WrittenAt.IsZero() {
		return nil, fmt.Errorf("manifest %s: missing _written_at", path)
	}
	if maxAge > 0 && time.Since(m.WrittenAt) > maxAge {
		return nil, fmt.Errorf("manifest %s is stale (written %s)", path, m.WrittenAt.Format(time.RFC3339))
	}
	return &m, nil
}
