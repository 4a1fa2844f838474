package engine

import (
	"context"
	"log"
)

type LowBalanceAlert struct {
	OwnerID         string
	BudgetName      string
	RemainingAmount float64
}

// Notifier receives low-balance alerts. Calls are fire-and-forget: the engine
// never inspects a result and a failing notifier must swallow its own errors,
// so a broken hook can never roll back a committed mutation.
type Notifier interface {
	Notify(ctx context.Context, alert LowBalanceAlert)
}

// LogNotifier writes alerts to the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, alert LowBalanceAlert) {
	log.Printf("INFO: User %s: Your budget for %s is running low. Only %.2f left.",
		alert.OwnerID, alert.BudgetName, alert.RemainingAmount)
}
