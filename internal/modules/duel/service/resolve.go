package service

import (
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/internal/modules/platform/client"
	"github.com/google/uuid"
)

// solveSeconds returns the seconds from start to the earliest accepted
// submission of problemID inside [start, deadline], or nil. subs is newest
// first, so it is scanned from the back.
func solveSeconds(subs []client.Submission, problemID string, start, deadline time.Time) *int {
	for i := len(subs) - 1; i >= 0; i-- {
		s := subs[i]
		if s.ProblemID != problemID || !s.Accepted() {
			continue
		}
		if s.SubmittedAt.Before(start) || s.SubmittedAt.After(deadline) {
			continue
		}
		secs := int(s.SubmittedAt.Sub(start).Seconds())
		return &secs
	}
	return nil
}

// outcome decides whether an active duel is over and who won. A nil winner on
// a finished duel is a draw.
func outcome(d entity.Duel, challengerSecs, challengedSecs *int, now time.Time) (done bool, winner *uuid.UUID) {
	expired := d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)

	switch {
	case challengerSecs != nil && challengedSecs != nil:
		switch {
		case *challengerSecs < *challengedSecs:
			return true, &d.ChallengerID
		case *challengedSecs < *challengerSecs:
			return true, &d.ChallengedID
		default:
			return true, nil
		}
	case !expired:
		return false, nil
	case challengerSecs != nil:
		return true, &d.ChallengerID
	case challengedSecs != nil:
		return true, &d.ChallengedID
	default:
		return true, nil
	}
}
