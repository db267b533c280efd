package slack

import "context"

// TeamSource fetches the team behind the admin credential.
type TeamSource interface {
	TeamInfo(ctx context.Context) (*Team, error)
}

// TeamLookup memoizes one TeamInfo call. Create one per request; it is not safe
// for concurrent use and never refreshes.
type TeamLookup struct {
	source TeamSource
	team   *Team
	err    error
	done   bool
}

func NewTeamLookup(source TeamSource) *TeamLookup {
	return &TeamLookup{source: source}
}

// Get fetches the team on first use and returns the cached result afterwards,
// including a cached error.
func (l *TeamLookup) Get(ctx context.Context) (*Team, error) {
	if !l.done {
		l.team, l.err = l.source.TeamInfo(ctx)
		l.done = true
	}
	return l.team, l.err
}
