package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tacotally/taco_tally_app/internal/core/domain"
	portsrepo "github.com/tacotally/taco_tally_app/internal/core/ports/repositories"
	"github.com/tacotally/taco_tally_app/internal/utils/timeutils"
)

// quotaGuard decides whether an award fits the giver's daily cap. It reads
// committed ledger state at check time; it holds no lock between the check
// and the subsequent write (see the concurrency note on tacoService).
type quotaGuard struct {
	txnRepo  portsrepo.TacoTxnReader
	maxDaily int64
	now      func() time.Time
}

// DailyGivenTotal sums the giver's awarded amounts over the calendar day
// containing now, via the ledger's time-range query.
func (g *quotaGuard) DailyGivenTotal(ctx context.Context, giverID, communityID string) (int64, error) {
	start, end := timeutils.DayWindow(g.now())
	total, err := g.txnRepo.SumGivenInWindow(ctx, giverID, communityID, start, end)
	if err != nil {
		// A failed quota read is a hard stop, never a silent allow.
		return 0, fmt.Errorf("failed to compute daily given total: %w", err)
	}
	return total, nil
}

// CanGive reports whether the proposed amount fits the remaining quota.
// No side effects.
func (g *quotaGuard) CanGive(ctx context.Context, giverID, communityID string, amount int64) (*domain.QuotaDecision, error) {
	total, err := g.DailyGivenTotal(ctx, giverID, communityID)
	if err != nil {
		return nil, err
	}
	remaining := g.maxDaily - total
	if remaining < 0 {
		remaining = 0
	}
	return &domain.QuotaDecision{
		Allowed:   total+amount <= g.maxDaily,
		Remaining: remaining,
	}, nil
}
