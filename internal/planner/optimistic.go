package planner

import (
	"context"

	"ironplan/internal/api"
)

// mutate is the single optimistic-update path for day mutations. The local
// view flips to optimistic immediately (nil removes the day); commit then
// asks the server. On success the server's copy wins, on failure the
// previous value is restored and the error surfaces to the caller.
//
// The lock is not held across the network call, so reads during an inflight
// mutation observe the optimistic value.
func (s *Store) mutate(ctx context.Context, date string, optimistic *api.PlannedWorkoutResponse, commit func(ctx context.Context) (*api.PlannedWorkoutResponse, error)) error {
	s.mu.Lock()
	prev, existed := s.days[date]
	if optimistic != nil {
		s.days[date] = *optimistic
	} else {
		delete(s.days, date)
	}
	s.mu.Unlock()

	confirmed, err := commit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if existed {
			s.days[date] = prev
		} else {
			delete(s.days, date)
		}
		return err
	}
	if confirmed != nil {
		s.days[date] = *confirmed
	} else {
		delete(s.days, date)
	}
	return nil
}
