package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/grain/config"
)

// WriteRunResults writes the successful runs as CSV rows, one per run,
// in the order given (the batch runner hands them over sorted by run id).
// Failed runs are skipped; the caller reports those separately.
func WriteRunResults(w io.Writer, results []RunResult) error {
	rows := make([]RunResult, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			rows = append(rows, r)
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// OutputManager handles structured batch output rooted in one directory.
// A nil manager is valid and drops everything (output disabled).
type OutputManager struct {
	dir string
}

// NewOutputManager creates the output directory. Returns nil if dir is
// empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir}, nil
}

// WriteResults writes the batch results CSV under the output directory.
func (om *OutputManager) WriteResults(name string, results []RunResult) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}

	if err := WriteRunResults(f, results); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// WriteConfig saves the effective configuration as YAML next to the
// results, so a batch can be reproduced exactly.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}
