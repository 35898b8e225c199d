package plsc

import (
	"goplsc/domain/core"
)

// Manifest captures the complete specification of an analysis run for
// reproducibility audits: identity, seed, shape, and timing. It must carry
// everything needed to replay the run against the same dataset.
type Manifest struct {
	AnalysisID core.AnalysisID `json:"analysis_id"`
	Seed       int64           `json:"seed"`

	Subjects     int `json:"subjects"`
	ImagingVars  int `json:"imaging_vars"`
	BehaviorVars int `json:"behavior_vars"`
	DesignVars   int `json:"design_vars"`
	Groups       int `json:"groups"`
	Components   int `json:"components"`

	NumPermutations int `json:"num_permutations"`
	NumBootstraps   int `json:"num_bootstraps"`

	StartedAt   core.Timestamp `json:"started_at"`
	CompletedAt core.Timestamp `json:"completed_at"`
	RuntimeMs   int64          `json:"runtime_ms"`

	WarningCount int `json:"warning_count"`
}

// NewManifest starts a manifest with a fresh analysis ID
func NewManifest(seed int64) Manifest {
	return Manifest{
		AnalysisID: core.NewAnalysisID(),
		Seed:       seed,
		StartedAt:  core.Now(),
	}
}

// Complete stamps the completion time and runtime
func (m *Manifest) Complete() {
	m.CompletedAt = core.Now()
	m.RuntimeMs = m.CompletedAt.Sub(m.StartedAt).Milliseconds()
}
