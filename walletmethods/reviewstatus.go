package walletmethods

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/ticker"
)

// StatusChecker is the narrow capability reviewStatus needs from the
// Services Facade: polling a transaction's confirmation state.
type StatusChecker interface {
	GetTransactionStatus(ctx context.Context, txid string) (confirmed bool, err error)
}

// ReviewCandidate is one action awaiting a status update, along with the
// timestamp (per the injected clock) after which it becomes eligible for
// review.
type ReviewCandidate struct {
	ActionID      uint64
	TxID          string
	ReviewAfterMs int64
}

// ReviewOutcome is reviewStatus's verdict for one candidate.
type ReviewOutcome struct {
	ActionID    uint64
	NowProven   bool
	StillWaiting bool
	Error       string
}

// ReviewStatus checks every candidate whose ReviewAfterMs has elapsed
// (per clk) against checker, leaving not-yet-due candidates untouched.
// Ported from original_source's utils/review_status.py's eligibility
// gate, grounded on the teacher's clock.Clock-driven cutover timestamp
// pattern (used e.g. in sweep's fee bumping).
func ReviewStatus(ctx context.Context, clk clock.Clock, checker StatusChecker, candidates []ReviewCandidate) []ReviewOutcome {
	nowMs := clk.Now().UnixMilli()
	outcomes := make([]ReviewOutcome, 0, len(candidates))
	for _, c := range candidates {
		if nowMs < c.ReviewAfterMs {
			outcomes = append(outcomes, ReviewOutcome{ActionID: c.ActionID, StillWaiting: true})
			continue
		}
		confirmed, err := checker.GetTransactionStatus(ctx, c.TxID)
		if err != nil {
			outcomes = append(outcomes, ReviewOutcome{ActionID: c.ActionID, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, ReviewOutcome{ActionID: c.ActionID, NowProven: confirmed, StillWaiting: !confirmed})
	}
	return outcomes
}

// RunReviewLoop drives ReviewStatus on a fixed interval using a
// pause/resume-capable ticker, the same construct the teacher uses for
// its htlcswitch and sweep background loops, so tests can single-step
// iterations instead of racing a live timer. It runs until ctx is
// canceled.
func RunReviewLoop(ctx context.Context, clk clock.Clock, checker StatusChecker, interval time.Duration, poll func() []ReviewCandidate, onOutcomes func([]ReviewOutcome)) {
	t := ticker.New(interval)
	t.Resume()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Ticks():
			candidates := poll()
			if len(candidates) == 0 {
				continue
			}
			onOutcomes(ReviewStatus(ctx, clk, checker, candidates))
		}
	}
}
