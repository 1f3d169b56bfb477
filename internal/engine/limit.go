package engine

// Policy bounds the follow-up work one run may take on. It is built
// from configuration once and treated as immutable for the whole run.
type Policy struct {
	// MaxNewPerRun caps how many New records are admitted for artifact
	// fetch in one run. Zero (or negative) pauses new intake entirely;
	// that is a valid configuration, not an error.
	MaxNewPerRun int `json:"max_new_per_run"`

	// MaxArtifactSizeBytes is the largest artifact the planner will
	// let the fetcher materialize.
	MaxArtifactSizeBytes int64 `json:"max_artifact_size_bytes"`
}

// Enforce applies the admission policy to the classified sequence in
// place and returns it.
//
// Only New records count against MaxNewPerRun: the first
// MaxNewPerRun of them in sequence order are admitted, the rest get
// SkipReasonNewLimit. Updated records are always admitted; they are
// already tracked and their follow-up cost is assumed bounded.
// Unchanged records need no follow-up and are never admitted, with no
// skip reason recorded (not an exclusion).
func Enforce(classified []ClassifiedRecord, policy Policy) []ClassifiedRecord {
	admittedNew := 0
	for i := range classified {
		switch classified[i].Status {
		case StatusNew:
			if admittedNew < policy.MaxNewPerRun {
				classified[i].Admitted = true
				admittedNew++
			} else {
				classified[i].Admitted = false
				classified[i].SkipReason = SkipReasonNewLimit
			}
		case StatusUpdated:
			classified[i].Admitted = true
		case StatusUnchanged:
			classified[i].Admitted = false
		}
	}
	return classified
}
