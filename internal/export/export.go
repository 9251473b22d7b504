// Package export writes the run's CSV artifacts under the output directory:
// dropped rows to logs/ and merged data, summaries and unmatched activities
// to merged_data/.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/gtmerge/internal/fsutil"
	"github.com/banshee-data/gtmerge/internal/monitoring"
)

// ErrOutput wraps every failure to create or write an artifact.
var ErrOutput = errors.New("output write failed")

// Output subdirectories and fixed artifact names.
const (
	LogsDir   = "logs"
	MergedDir = "merged_data"

	DroppedGTFile  = "droppedGtData.csv"
	DroppedOBAFile = "droppedObaData.csv"
	SweepSummary   = "sweepSummary.csv"
	SweepReport    = "sweepReport.html"
	RunManifest    = "run.json"

	MergedBase    = "mergedData"
	SummaryBase   = "matchSummary"
	UnmatchedBase = "unmatchedObaData"
	BoxPlotBase   = "timeDifference"
)

// ArtifactName names a per-tolerance artifact, e.g. mergedData_3000ms.csv.
func ArtifactName(base string, toleranceMs int64, ext string) string {
	return fmt.Sprintf("%s_%dms%s", base, toleranceMs, ext)
}

// Writer creates artifacts below a root directory.
type Writer struct {
	fs   fsutil.FileSystem
	root string
}

// NewWriter returns a Writer rooted at root.
func NewWriter(fsys fsutil.FileSystem, root string) *Writer {
	return &Writer{fs: fsys, root: root}
}

// Root returns the output directory.
func (w *Writer) Root() string { return w.root }

// Path joins a subdirectory and file name onto the output directory.
func (w *Writer) Path(dir, name string) string {
	return filepath.Join(w.root, dir, name)
}

// PrepareOutputDirs creates the logs and merged data directories. It is safe
// to call on an existing tree.
func (w *Writer) PrepareOutputDirs() error {
	for _, dir := range []string{LogsDir, MergedDir} {
		p := filepath.Join(w.root, dir)
		if err := w.fs.MkdirAll(p, 0o755); err != nil {
			return fmt.Errorf("%w: creating %s: %v", ErrOutput, p, err)
		}
	}
	return nil
}

// WriteFile creates dir/name and hands it to fn. The file is closed before
// returning and any failure is wrapped in ErrOutput.
func (w *Writer) WriteFile(dir, name string, fn func(io.Writer) error) (err error) {
	path := w.Path(dir, name)
	f, err := w.fs.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutput, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %s: %v", ErrOutput, path, cerr)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutput, path, err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

// writeCSV writes a header and the records produced by each.
func (w *Writer) writeCSV(dir, name string, header []string, each func(emit func([]string) error) error) error {
	return w.WriteFile(dir, name, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := each(cw.Write); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	})
}
