package labeling

import (
	"time"

	"photolabel/internal/ports"
)

const (
	defaultLockWindow      = 60 * time.Minute
	defaultClaimScanWindow = 50
	defaultHistoryWindow   = 200
)

// Options tune the assignment engine and the navigation query windows.
type Options struct {
	// LockWindow is the soft task-lock timeout stamped into task_expires_at.
	LockWindow time.Duration
	// ClaimScanWindow bounds the oldest-first unlabeled scan per claim
	// attempt. A fully exhausted window with no claimable property reads as
	// "no work", even when deeper work exists behind claimed properties.
	ClaimScanWindow int
	// HistoryWindow bounds history queries and review/editor navigation.
	HistoryWindow int
}

func (o Options) withDefaults() Options {
	if o.LockWindow <= 0 {
		o.LockWindow = defaultLockWindow
	}
	if o.ClaimScanWindow <= 0 {
		o.ClaimScanWindow = defaultClaimScanWindow
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = defaultHistoryWindow
	}
	return o
}

// Service implements task assignment, label persistence and the QA/admin
// operations on top of the repository and unit-of-work ports. It holds no
// in-process locks; correctness under concurrent callers relies on the
// store transaction plus optimistic version checks, retried on conflict.
type Service struct {
	repo     ports.LabelingRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	resolver ports.URLResolver
	opts     Options
}

func NewService(repo ports.LabelingRepository, uow ports.UnitOfWork, cache ports.Cache, resolver ports.URLResolver, opts Options) *Service {
	return &Service{
		repo:     repo,
		uow:      uow,
		cache:    cache,
		resolver: resolver,
		opts:     opts.withDefaults(),
	}
}
