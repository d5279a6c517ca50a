package stakingd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"stakeledger/config"
	nativecommon "stakeledger/native/common"
	"stakeledger/native/emission"
)

// Keeper periodically triggers every collector and emits when due, collecting
// emission bounties at its own address.
type Keeper struct {
	svc      *Service
	address  ethcommon.Address
	interval time.Duration
	logger   *slog.Logger
}

// NewKeeper constructs a keeper ticking every interval.
func NewKeeper(svc *Service, address ethcommon.Address, interval time.Duration, logger *slog.Logger) *Keeper {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Keeper{svc: svc, address: address, interval: interval, logger: logger.With("component", "keeper")}
}

// keeperFromConfig returns nil when the keeper is disabled.
func keeperFromConfig(cfg KeeperConfig, svc *Service, logger *slog.Logger) (*Keeper, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	addr, err := config.ParseAddress(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("keeper address: %w", err)
	}
	return NewKeeper(svc, addr, cfg.Interval.Duration, logger), nil
}

// Run ticks until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			k.Tick(ctx)
		}
	}
}

// Tick runs one keeper round. Expected outcomes (paused modules, nothing
// due) are not errors.
func (k *Keeper) Tick(ctx context.Context) {
	for _, name := range k.svc.System().CollectorNames() {
		if _, err := k.svc.Trigger(ctx, name); err != nil && !benign(err) {
			k.logger.Warn("collector trigger failed", "collector", name, "error", err.Error())
		}
	}
	if k.svc.System().scheduler == nil {
		return
	}
	if _, err := k.svc.Emit(ctx, k.address); err != nil && !benign(err) {
		k.logger.Warn("emission failed", "error", err.Error())
	}
}

func benign(err error) bool {
	return errors.Is(err, emission.ErrNotReady) ||
		errors.Is(err, emission.ErrReserveDepleted) ||
		errors.Is(err, nativecommon.ErrModulePaused)
}
