package audit

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/repository"
)

// Store is the read-only audit surface of the repository.
type Store interface {
	AuditWalletBalances(ctx context.Context) ([]repository.WalletDrift, error)
	AuditPooledAmounts(ctx context.Context) ([]repository.PoolDrift, error)
}

// Auditor periodically recomputes wallet balances and pooled amounts
// from the ledgers and logs any drift from the stored values. It never
// mutates state; drift means a bug and wants a human.
type Auditor struct {
	store   Store
	log     *logrus.Logger
	cron    *cron.Cron
	timeout time.Duration
}

// NewAuditor creates an auditor with the given per-run timeout.
func NewAuditor(store Store, log *logrus.Logger, timeout time.Duration) *Auditor {
	return &Auditor{
		store:   store,
		log:     log,
		cron:    cron.New(),
		timeout: timeout,
	}
}

// Start schedules the audit using a cron spec (e.g. "@hourly").
func (a *Auditor) Start(schedule string) error {
	if _, err := a.cron.AddFunc(schedule, a.Run); err != nil {
		return err
	}
	a.cron.Start()
	a.log.Infof("Consistency auditor scheduled: %s", schedule)
	return nil
}

// Stop halts the schedule and waits for a running audit to finish.
func (a *Auditor) Stop() {
	<-a.cron.Stop().Done()
}

// Run executes one audit pass.
func (a *Auditor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	wallets, err := a.store.AuditWalletBalances(ctx)
	if err != nil {
		a.log.Errorf("Wallet audit failed: %v", err)
	} else {
		for _, d := range wallets {
			a.log.Errorf("Wallet drift for user %s: stored %.2f, ledgers say %.2f", d.UserID, d.Stored, d.Computed)
		}
	}

	pools, err := a.store.AuditPooledAmounts(ctx)
	if err != nil {
		a.log.Errorf("Pool audit failed: %v", err)
	} else {
		for _, d := range pools {
			a.log.Errorf("Pool drift for budget %s: stored %.2f, contributions say %.2f", d.BudgetID, d.Stored, d.Computed)
		}
	}

	if len(wallets) == 0 && len(pools) == 0 {
		a.log.Debug("Consistency audit passed")
	}
}
