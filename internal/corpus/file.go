package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
)

// snapshotFile is the persisted snapshot format. Embeddings are stored
// inline with each passage so a load needs no embedding service.
type snapshotFile struct {
	Version    string            `json:"version"`
	Model      string            `json:"model"`
	Dimensions int               `json:"dimensions"`
	BuiltAt    time.Time         `json:"built_at"`
	Passages   []*domain.Passage `json:"passages"`
}

// Save writes the snapshot to path as JSON, creating parent directories.
// The write goes through a temp file and rename so a crash never leaves a
// half-written snapshot behind.
func Save(snapshot *Snapshot, model, path string) error {
	payload := snapshotFile{
		Version:    snapshot.Version(),
		Model:      model,
		Dimensions: snapshot.Dimensions(),
		BuiltAt:    time.Now().UTC(),
		Passages:   snapshot.Passages(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Load reads a persisted snapshot and rebuilds the in-memory index. If
// expectModel is non-empty it must match the model recorded at build time,
// and every vector must match the recorded dimensions; mismatches are
// integrity failures, never silently served.
func Load(path, expectModel string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var payload snapshotFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot %s: %v", domain.ErrCorpusIntegrity, path, err)
	}

	if expectModel != "" && payload.Model != expectModel {
		return nil, fmt.Errorf("%w: snapshot built with model %q, engine configured for %q",
			domain.ErrCorpusIntegrity, payload.Model, expectModel)
	}

	snapshot, err := BuildSnapshot(payload.Version, payload.Dimensions, payload.Passages)
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
