package state

import (
	"math/big"
	"path/filepath"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"stakeledger/native/bank"
	nativecommon "stakeledger/native/common"
	"stakeledger/native/collector"
	"stakeledger/native/emission"
	"stakeledger/native/rewards"
	"stakeledger/native/staking"
	"stakeledger/storage"
)

func TestRewardsAccountRoundTripKeepsCorrectionSign(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	addr := ethcommon.HexToAddress("0xa1")

	_, ok, err := m.RewardsAccount(addr)
	require.NoError(t, err)
	require.False(t, ok)

	correction, _ := new(big.Int).SetString("-340282366920938463463374607431768211456000", 10)
	require.NoError(t, m.PutRewardsAccount(&rewards.Account{
		Address:    addr,
		Shares:     uint256.NewInt(1_000),
		Correction: correction,
		Withdrawn:  uint256.NewInt(7),
	}))

	got, ok, err := m.RewardsAccount(addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, addr, got.Address)
	require.Equal(t, uint64(1_000), got.Shares.Uint64())
	require.Equal(t, uint64(7), got.Withdrawn.Uint64())
	require.Zero(t, correction.Cmp(got.Correction))
}

func TestRewardsGlobalMissingIsNil(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	g, err := m.RewardsGlobal()
	require.NoError(t, err)
	require.Nil(t, g)

	require.NoError(t, m.PutRewardsGlobal(&rewards.Global{
		TotalShares: uint256.NewInt(5),
		Accumulator: new(uint256.Int).Set(rewards.Scale),
		Holders:     2,
	}))
	g, err = m.RewardsGlobal()
	require.NoError(t, err)
	require.Equal(t, uint64(5), g.TotalShares.Uint64())
	require.True(t, g.Accumulator.Eq(rewards.Scale))
	require.True(t, g.RewardBalance.IsZero())
	require.Equal(t, uint64(2), g.Holders)
}

func TestIterateAccountsStaysWithinPrefix(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	addrs := []ethcommon.Address{
		ethcommon.HexToAddress("0x03"),
		ethcommon.HexToAddress("0x01"),
		ethcommon.HexToAddress("0x02"),
	}
	for _, addr := range addrs {
		require.NoError(t, m.PutRewardsAccount(&rewards.Account{Address: addr, Shares: uint256.NewInt(1)}))
		require.NoError(t, m.PutStakingAccount(&staking.Account{Address: addr, Shares: uint256.NewInt(2)}))
	}
	var seen []ethcommon.Address
	require.NoError(t, m.IterateRewardsAccounts(func(a *rewards.Account) error {
		seen = append(seen, a.Address)
		require.Equal(t, uint64(1), a.Shares.Uint64())
		return nil
	}))
	require.Equal(t, []ethcommon.Address{addrs[1], addrs[2], addrs[0]}, seen)

	count := 0
	require.NoError(t, m.IterateStakingAccounts(func(a *staking.Account) error {
		count++
		require.Equal(t, uint64(2), a.Shares.Uint64())
		return nil
	}))
	require.Equal(t, 3, count)
}

func TestCollectorAndEmissionRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	require.NoError(t, m.PutCollectorState(&collector.State{
		Name:          "dividend",
		TotalReceived: uint256.NewInt(10),
		Triggers:      3,
		LastTrigger:   1_700_000_000,
	}))
	st, ok, err := m.CollectorState("dividend")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(10), st.TotalReceived.Uint64())
	require.Equal(t, uint64(3), st.Triggers)
	require.Equal(t, int64(1_700_000_000), st.LastTrigger)

	_, ok, err = m.CollectorState("reinvest")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.PutEmissionState(&emission.State{Initialized: true, LastTime: 42, LastBlock: 9, TotalEmitted: uint256.NewInt(100)}))
	es, err := m.EmissionState()
	require.NoError(t, err)
	require.True(t, es.Initialized)
	require.Equal(t, int64(42), es.LastTime)
	require.Equal(t, uint64(9), es.LastBlock)
	require.Equal(t, uint64(100), es.TotalEmitted.Uint64())
	require.True(t, es.TotalBounty.IsZero())
}

func TestPausesAndVersion(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	require.False(t, m.IsPaused(nativecommon.ModuleRewards))
	require.NoError(t, m.SetPaused(nativecommon.ModuleRewards, true))
	require.True(t, m.IsPaused(nativecommon.ModuleRewards))
	require.Equal(t, map[string]bool{
		nativecommon.ModuleStaking:    false,
		nativecommon.ModuleRewards:    true,
		nativecommon.ModuleCollector:  false,
		nativecommon.ModuleEmission:   false,
		nativecommon.ModuleRedemption: false,
	}, m.Pauses())

	require.NoError(t, m.EnsureStateVersion())
	version, ok, err := m.StateVersion()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, StateVersion, version)

	require.NoError(t, m.SetStateVersion(StateVersion+1))
	require.ErrorIs(t, m.EnsureStateVersion(), ErrStateVersionMismatch)
}

func TestEnginesPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	var (
		vault   = ethcommon.HexToAddress("0x5a")
		rewardV = ethcommon.HexToAddress("0x7a")
		alice   = ethcommon.HexToAddress("0xa1")
		payer   = ethcommon.HexToAddress("0xfe")
	)

	build := func(db storage.Database) (*Manager, *bank.Token, *rewards.Ledger, *staking.Pool) {
		m := NewManager(db)
		stake := bank.NewToken("STK", m)
		reward := bank.NewToken("RWD", m)
		ledger := rewards.NewLedger(rewardV, reward)
		ledger.SetState(m)
		pool := staking.NewPool(vault, stake, ledger)
		pool.SetState(m)
		return m, reward, ledger, pool
	}

	db, err := storage.NewLevelDB(path)
	require.NoError(t, err)
	m, reward, ledger, pool := build(db)
	require.NoError(t, bank.NewToken("STK", m).Mint(alice, uint256.NewInt(1_000)))
	require.NoError(t, reward.Mint(payer, uint256.NewInt(500)))
	_, err = pool.Deposit(alice, uint256.NewInt(1_000))
	require.NoError(t, err)
	_, err = ledger.DepositRevenue(payer, uint256.NewInt(500))
	require.NoError(t, err)
	db.Close()

	db, err = storage.NewLevelDB(path)
	require.NoError(t, err)
	defer db.Close()
	_, reward, ledger, pool = build(db)

	owed, err := ledger.Withdrawable(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(500), owed.Uint64())
	value, err := pool.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), value.Uint64())

	paid, err := ledger.Claim(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(500), paid.Uint64())
	bal, err := reward.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(500), bal.Uint64())

	report, err := ledger.Audit()
	require.NoError(t, err)
	require.True(t, report.Healthy())
}
