package sweep

import (
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/gtmerge/internal/config"
	"github.com/banshee-data/gtmerge/internal/enrich"
	"github.com/banshee-data/gtmerge/internal/report"
	"github.com/banshee-data/gtmerge/internal/timeutil"
	"github.com/banshee-data/gtmerge/internal/version"
)

// InputCounts records how the normalizers split each input.
type InputCounts struct {
	GTRows      int `json:"gt_rows"`
	GTClean     int `json:"gt_clean"`
	GTDropped   int `json:"gt_dropped"`
	OBARows     int `json:"oba_rows"`
	OBAClean    int `json:"oba_clean"`
	OBADropped  int `json:"oba_dropped"`
	OBAExcluded int `json:"oba_excluded"`
}

// ToleranceResult records the outcome of one tolerance.
type ToleranceResult struct {
	ToleranceMs int64        `json:"tolerance_ms"`
	Matched     int          `json:"matched"`
	Unmatched   int          `json:"unmatched"`
	Stats       enrich.Stats `json:"time_difference"`
}

// Manifest describes one run for later audit.
type Manifest struct {
	RunID      string             `json:"run_id"`
	Version    string             `json:"version"`
	GitSHA     string             `json:"git_sha"`
	BuildTime  string             `json:"build_time"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Mode       string             `json:"mode"`
	Config     config.MergeConfig `json:"config"`
	Inputs     InputCounts        `json:"inputs"`
	Results    []ToleranceResult  `json:"results"`
	Error      string             `json:"error,omitempty"`
}

// NewManifest starts a manifest for cfg with a fresh run id.
func NewManifest(clock timeutil.Clock, cfg config.MergeConfig) *Manifest {
	return &Manifest{
		RunID:     uuid.New().String(),
		Version:   version.Version,
		GitSHA:    version.GitSHA,
		BuildTime: version.BuildTime,
		StartedAt: clock.Now().UTC(),
		Mode:      ModeName(cfg.MergeOneToOne),
		Config:    cfg,
	}
}

// Record appends the result of one tolerance.
func (m *Manifest) Record(p report.SweepPoint) {
	m.Results = append(m.Results, ToleranceResult{
		ToleranceMs: p.ToleranceMs,
		Matched:     p.Matched,
		Unmatched:   p.Unmatched,
		Stats:       p.Stats,
	})
}

// Finish stamps the end time and the run error, if any.
func (m *Manifest) Finish(clock timeutil.Clock, err error) {
	m.FinishedAt = clock.Now().UTC()
	if err != nil {
		m.Error = err.Error()
	}
}

// WriteTo encodes the manifest as indented JSON.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}
