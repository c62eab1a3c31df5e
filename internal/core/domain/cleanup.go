package domain

// MarkerFailure records why a marker could not be deleted.
type MarkerFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// CleanupReport is the outcome of a marker garbage collection run.
type CleanupReport struct {
	TotalMarkers int             `json:"total_markers"`
	DeletedCount int             `json:"deleted_count"`
	DryRun       bool            `json:"dry_run"`
	DeletedNames []string        `json:"deleted_names"`
	Failures     []MarkerFailure `json:"failures,omitempty"`
	StaleStaging int             `json:"stale_staging"`
}
