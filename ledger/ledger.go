// Package ledger records which poll option each viewer picked. An entry is
// permanent evidence of a vote: it is never cleared, not even when an admin
// resets a poll's counters, so a viewer can vote at most once per poll.
package ledger

import "context"

// Ledger maps (viewer, poll) to the chosen option index.
type Ledger interface {
	// Choice returns the recorded option index for the viewer on the poll,
	// and whether such a record exists.
	Choice(ctx context.Context, viewerID, pollID string) (int, bool, error)
	// Record stores the viewer's choice. Callers check Choice first; a
	// duplicate Record must not end up counting twice upstream.
	Record(ctx context.Context, viewerID, pollID string, optionIndex int) error
}
