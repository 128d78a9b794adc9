package engine

import "fmt"

// UpstreamError reports that a collaborator the engine depends on (snapshot
// source, access log, or catalog) failed. It is the only error the engine
// returns to callers.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream source names.
const (
	SourceSnapshot  = "snapshot source"
	SourceAccessLog = "access log"
	SourceCatalog   = "report catalog"
)
