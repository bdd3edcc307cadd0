package pipeline

// Counts tracks per-action outcomes and byte totals for successful actions.
type Counts struct {
	Succeeded int
	Failed    int
	Previewed int
	BytesIn   int64
	BytesOut  int64
	Stopped   bool // Execution stopped early on cancellation.
}

// Processed returns how many actions reached an outcome.
func (c *Counts) Processed() int { return c.Succeeded + c.Failed + c.Previewed }

// SpaceSaved returns the aggregate byte difference between sources and
// outputs. Positive means outputs are smaller; negative means they grew.
func (c *Counts) SpaceSaved() int64 {
	return c.BytesIn - c.BytesOut
}

// RunStats summarizes a whole run.
type RunStats struct {
	RunID       string
	AuditLog    string
	Rows        int // Candidates extracted from the report.
	Planned     int
	NotFound    int
	Unsupported int
	Healthy     int // Resolved files needing no action.
	Counts
}
