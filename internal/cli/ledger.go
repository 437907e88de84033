package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/internal/config"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// OpenLedger opens the configured store and restores the ledger from it.
// The returned backend must be closed by the caller.
func OpenLedger(ctx context.Context, cfg config.Config, logger *slog.Logger, hooks ...domain.Hooks) (*tradecoin.Ledger, *config.Backend, error) {
	backend, err := cfg.Store.Open(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}

	opts := []tradecoin.Option{
		tradecoin.WithLogger(logger),
		tradecoin.WithStore(backend.Store),
	}
	if cfg.Admin != "" {
		opts = append(opts, tradecoin.WithAdmin(domain.Address(cfg.Admin)))
	}
	if backend.Locker != nil {
		opts = append(opts, tradecoin.WithLocker(backend.Locker, cfg.LockTTL))
	}
	if len(hooks) > 0 {
		opts = append(opts, tradecoin.WithHooks(domain.Merge(hooks...)))
	}

	l, err := tradecoin.Open(ctx, opts...)
	if err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("error restoring ledger: %w", err)
	}
	logger.Info("Ledger opened", "store", cfg.Store.Kind, "version", l.Snapshot().Version)
	return l, backend, nil
}
