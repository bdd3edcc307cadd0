package pipeline

import (
	"context"
	"fmt"

	"github.com/backmassage/skipfix/internal/planner"
	"github.com/backmassage/skipfix/internal/resolve"
)

// Planning-report statuses for resolved files.
const (
	statusHealthy   = "OK (no fix required)"
	statusDuplicate = "SKIP (duplicate of an earlier entry)"
	statusPlan      = "PLAN: "
)

// PlanRow is one line of the planning report.
type PlanRow struct {
	Resolution resolve.Resolution
	Action     *planner.Action // nil unless a fix is planned
	Status     string
}

// Plan is the planning report plus the ordered actions to execute.
type Plan struct {
	Rows    []PlanRow
	Actions []*planner.Action
}

// Planned returns the number of rows with an action.
func (p *Plan) Planned() int { return len(p.Actions) }

// Count returns the number of rows whose resolution has status s.
func (p *Plan) Count(s resolve.Status) int {
	n := 0
	for _, r := range p.Rows {
		if r.Resolution.Status == s {
			n++
		}
	}
	return n
}

// Resolver maps a candidate onto the library.
type Resolver interface {
	Resolve(candidate string) resolve.Resolution
}

// Planner decides the action for a resolved path.
type Planner interface {
	Plan(ctx context.Context, path string) (*planner.Action, error)
}

// BuildPlan resolves and plans each candidate in order. Several candidates
// can resolve to the same file; only the first of them is planned. An error
// means planning could not continue (cancellation or a decode test that
// could not run).
func BuildPlan(ctx context.Context, candidates []string, res Resolver, pl Planner) (*Plan, error) {
	plan := &Plan{Rows: make([]PlanRow, 0, len(candidates))}
	seen := make(map[string]bool)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := PlanRow{Resolution: res.Resolve(c)}
		switch {
		case row.Resolution.Status != resolve.Resolved:
			row.Status = row.Resolution.Label()
		case seen[row.Resolution.Path]:
			row.Status = statusDuplicate
		default:
			seen[row.Resolution.Path] = true
			a, err := pl.Plan(ctx, row.Resolution.Path)
			if err != nil {
				return nil, fmt.Errorf("plan %s: %w", c, err)
			}
			if a == nil {
				row.Status = statusHealthy
			} else {
				row.Action = a
				row.Status = statusPlan + a.Kind.String()
				plan.Actions = append(plan.Actions, a)
			}
		}
		plan.Rows = append(plan.Rows, row)
	}
	return plan, nil
}
