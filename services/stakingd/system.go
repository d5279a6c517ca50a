package stakingd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"stakeledger/config"
	"stakeledger/core/events"
	"stakeledger/core/state"
	"stakeledger/native/bank"
	"stakeledger/native/collector"
	"stakeledger/native/emission"
	"stakeledger/native/redeem"
	"stakeledger/native/rewards"
	"stakeledger/native/staking"
	"stakeledger/native/swap"
	"stakeledger/storage"
)

// SystemOptions tunes NewSystem. Zero values pick production defaults.
type SystemOptions struct {
	Emitter   events.Emitter
	BlockTime time.Duration
	Now       func() time.Time
}

// System owns every engine of one ledger deployment over a shared state
// manager. Operations are serialised by a single mutex.
type System struct {
	mu sync.Mutex

	params     config.Global
	state      *state.Manager
	tokens     map[string]*bank.Token
	router     *swap.FixedRateRouter
	ledger     *rewards.Ledger
	pool       *staking.Pool
	collectors map[string]collector.Collector
	names      []string
	scheduler  *emission.Scheduler
	redeemer   *redeem.Redeemer

	blockTime time.Duration
	nowFn     func() time.Time
}

// NewSystem wires the engines described by params over db. A store without a
// schema version is treated as fresh: genesis allocations are minted and the
// emission schedule starts at the current time.
func NewSystem(params config.Global, db storage.Database, opts SystemOptions) (*System, error) {
	if err := config.ValidateConfig(params); err != nil {
		return nil, err
	}
	if opts.Emitter == nil {
		opts.Emitter = events.NoopEmitter{}
	}
	if opts.BlockTime <= 0 {
		opts.BlockTime = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	mgr := state.NewManager(db)
	_, initialised, err := mgr.StateVersion()
	if err != nil {
		return nil, fmt.Errorf("read state version: %w", err)
	}
	if err := mgr.EnsureStateVersion(); err != nil {
		return nil, err
	}

	sys := &System{
		params:     params,
		state:      mgr,
		tokens:     make(map[string]*bank.Token, len(params.Assets)),
		collectors: make(map[string]collector.Collector, len(params.Collectors)),
		blockTime:  opts.BlockTime,
		nowFn:      opts.Now,
	}
	if err := sys.buildTokens(opts.Emitter); err != nil {
		return nil, err
	}
	if err := sys.buildRouter(opts.Emitter); err != nil {
		return nil, err
	}
	if err := sys.buildEngines(opts.Emitter); err != nil {
		return nil, err
	}
	if err := sys.buildRedeemer(opts.Emitter); err != nil {
		return nil, err
	}
	if err := sys.buildFeeRoutes(); err != nil {
		return nil, err
	}
	if !initialised {
		if err := sys.genesis(); err != nil {
			return nil, fmt.Errorf("genesis: %w", err)
		}
	}
	// Configured pauses apply on every start; resuming is an admin action.
	for _, module := range params.PausedModules() {
		if err := mgr.SetPaused(module, true); err != nil {
			return nil, err
		}
	}
	return sys, nil
}

func (s *System) buildTokens(emitter events.Emitter) error {
	for _, asset := range s.params.Assets {
		token := bank.NewToken(asset.Symbol, s.state)
		token.SetEmitter(emitter)
		for _, raw := range asset.Exempt {
			addr, err := config.ParseAddress(raw)
			if err != nil {
				return err
			}
			token.Exempt(addr)
		}
		s.tokens[token.Symbol()] = token
	}
	return nil
}

func (s *System) buildRouter(emitter events.Emitter) error {
	rates, err := s.params.SwapRates()
	if err != nil {
		return err
	}
	var reserve ethcommon.Address
	if s.params.Swap.Reserve != "" {
		if reserve, err = config.ParseAddress(s.params.Swap.Reserve); err != nil {
			return err
		}
	}
	s.router = swap.NewFixedRateRouter(reserve)
	s.router.SetEmitter(emitter)
	s.router.SetNowFunc(s.nowFn)
	s.router.SetExecutionImpact(s.params.Swap.ImpactBps)
	for _, symbol := range s.symbols() {
		s.router.RegisterAsset(s.tokens[symbol])
	}
	for _, rate := range rates {
		if err := s.router.SetRate(rate.From, rate.To, rate.Num, rate.Den); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) buildEngines(emitter events.Emitter) error {
	stakingVault, err := config.ParseAddress(s.params.Staking.Vault)
	if err != nil {
		return err
	}
	rewardsVault, err := config.ParseAddress(s.params.Rewards.Vault)
	if err != nil {
		return err
	}
	policy, err := s.params.ZeroSharePolicy()
	if err != nil {
		return err
	}
	principal := s.tokens[s.params.Staking.Asset]
	rewardAsset := s.tokens[s.params.Rewards.Asset]

	s.ledger = rewards.NewLedger(rewardsVault, rewardAsset)
	s.ledger.SetState(s.state)
	s.ledger.SetEmitter(emitter)
	s.ledger.SetPauses(s.state)
	s.ledger.SetZeroSharePolicy(policy)

	s.pool = staking.NewPool(stakingVault, principal, s.ledger)
	s.pool.SetState(s.state)
	s.pool.SetEmitter(emitter)
	s.pool.SetPauses(s.state)
	s.pool.SetNowFunc(s.nowFn)

	for _, cfg := range s.params.Collectors {
		addr, err := config.ParseAddress(cfg.Address)
		if err != nil {
			return err
		}
		switch cfg.Kind {
		case string(collector.KindReinvest):
			c := collector.NewReinvestCollector(cfg.Name, addr, principal, s.pool)
			c.SetState(s.state)
			c.SetEmitter(emitter)
			c.SetPauses(s.state)
			c.SetNowFunc(s.nowFn)
			s.collectors[cfg.Name] = c
		case string(collector.KindDividend):
			c := collector.NewDividendCollector(cfg.Name, addr, s.tokens[s.params.CollectedAsset(cfg.Name)], rewardAsset, s.router, s.ledger, collector.DividendOptions{
				Path:        cfg.Path,
				SlippageBps: cfg.SlippageBps,
				Deadline:    cfg.Deadline(),
			})
			c.SetState(s.state)
			c.SetEmitter(emitter)
			c.SetPauses(s.state)
			c.SetNowFunc(s.nowFn)
			s.collectors[cfg.Name] = c
		default:
			return fmt.Errorf("collector %s: unknown kind %q", cfg.Name, cfg.Kind)
		}
		s.names = append(s.names, cfg.Name)
	}

	if !s.params.Emission.Enabled {
		return nil
	}
	params, err := s.params.EmissionParams()
	if err != nil {
		return err
	}
	reserve, err := config.ParseAddress(s.params.Emission.Reserve)
	if err != nil {
		return err
	}
	scheduler, err := emission.NewScheduler(params, reserve, principal, s.pool)
	if err != nil {
		return err
	}
	scheduler.SetState(s.state)
	scheduler.SetEmitter(emitter)
	scheduler.SetPauses(s.state)
	scheduler.SetNowFunc(s.nowFn)
	s.scheduler = scheduler
	return nil
}

func (s *System) buildRedeemer(emitter events.Emitter) error {
	if !s.params.Redemption.Enabled {
		return nil
	}
	reserve, err := config.ParseAddress(s.params.Redemption.Reserve)
	if err != nil {
		return err
	}
	symbols := s.params.RedemptionAssets()
	assets := make([]bank.Asset, 0, len(symbols))
	for _, symbol := range symbols {
		token := s.tokens[symbol]
		// Payouts leave the reserve untaxed so unwinding returns them in full.
		token.Exempt(reserve)
		assets = append(assets, token)
	}
	redeemer, err := redeem.NewRedeemer(reserve, s.tokens[s.params.Staking.Asset], assets...)
	if err != nil {
		return err
	}
	redeemer.SetEmitter(emitter)
	redeemer.SetPauses(s.state)
	s.redeemer = redeemer
	return nil
}

func (s *System) buildFeeRoutes() error {
	for _, asset := range s.params.Assets {
		token := s.tokens[asset.Symbol]
		for _, cfg := range asset.Fees {
			route := bank.FeeRoute{Name: cfg.Name, Bps: cfg.Bps}
			if cfg.Collector != "" {
				c := s.collectors[cfg.Collector]
				route.Sink = c.Address()
				route.Hook = c
			} else {
				sink, err := config.ParseAddress(cfg.Sink)
				if err != nil {
					return err
				}
				route.Sink = sink
			}
			if err := token.AddFeeRoute(route); err != nil {
				return fmt.Errorf("asset %s: %w", asset.Symbol, err)
			}
		}
	}
	return nil
}

func (s *System) genesis() error {
	allocations, err := s.params.GenesisAllocations()
	if err != nil {
		return err
	}
	for _, alloc := range allocations {
		if err := s.tokens[alloc.Asset].Mint(alloc.Address, alloc.Amount); err != nil {
			return fmt.Errorf("mint %s to %s: %w", alloc.Asset, alloc.Address.Hex(), err)
		}
	}
	if s.scheduler != nil {
		s.syncHeight()
		if err := s.scheduler.Initialize(s.nowFn(), s.scheduler.BlockHeight()); err != nil {
			return err
		}
	}
	return nil
}

// syncHeight derives the block height used by block-throttled emissions from
// the wall clock.
func (s *System) syncHeight() {
	if s.scheduler == nil {
		return
	}
	s.scheduler.SetBlockHeight(uint64(s.nowFn().UnixNano() / s.blockTime.Nanoseconds()))
}

func (s *System) symbols() []string {
	out := make([]string, 0, len(s.tokens))
	for symbol := range s.tokens {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// Token returns the token with symbol.
func (s *System) Token(symbol string) (*bank.Token, bool) {
	token, ok := s.tokens[symbol]
	return token, ok
}

// CollectorNames lists collectors in configuration order.
func (s *System) CollectorNames() []string {
	return append([]string(nil), s.names...)
}

// State exposes the underlying state manager.
func (s *System) State() *state.Manager { return s.state }
