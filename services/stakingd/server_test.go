package stakingd

import (
	"context"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stakeledger/config"
	"stakeledger/native/collector"
	"stakeledger/native/redeem"
	"stakeledger/native/rewards"
	"stakeledger/native/staking"
)

func TestDepositMintsSharesForReceivedAmount(t *testing.T) {
	env := newTestEnv(t, testParams())

	rec := env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[depositResponse](t, rec)
	require.Equal(t, "100000", resp.Requested)
	require.Equal(t, "97000", resp.Received)
	require.Equal(t, "97000", resp.SharesMinted)

	stats := decodeJSON[statsResponse](t, env.do(http.MethodGet, "/v1/stats", nil, nil))
	require.Equal(t, "97000", stats.TotalShares)
	require.Len(t, stats.Collectors, 2)
	require.Equal(t, "1000", stats.Collectors[0].TotalReceived)
	require.Equal(t, "2000", stats.Collectors[1].TotalReceived)
}

func TestFeesFlowIntoRewardsAndPrincipal(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)

	rec := env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	trig := decodeJSON[triggerResponse](t, rec)
	require.Equal(t, "2000", trig.Input)
	require.Equal(t, "2000", trig.Forwarded)

	withdrawable := decodeJSON[claimResponse](t, env.do(http.MethodGet, "/v1/withdrawable/"+alice.Hex(), nil, nil))
	require.Equal(t, "1999", withdrawable.Amount)

	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/reinvest/trigger", nil, nil), http.StatusOK)
	account := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, "97000", account.Shares)
	require.Equal(t, "98000", account.StakedValue)

	claim := decodeJSON[claimResponse](t, env.do(http.MethodPost, "/v1/claim", claimRequest{Account: alice.Hex()}, nil))
	require.Equal(t, "1999", claim.Amount)
	account = decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, "1999", account.Balances["RWD"])
	require.Equal(t, "0", account.Withdrawable)

	again := decodeJSON[claimResponse](t, env.do(http.MethodPost, "/v1/claim", claimRequest{Account: alice.Hex()}, nil))
	require.Equal(t, "0", again.Amount)

	audit := decodeJSON[auditResponse](t, env.do(http.MethodGet, "/v1/audit", nil, nil))
	require.True(t, audit.Healthy)
	require.Equal(t, "1", audit.Surplus)

	require.Len(t, env.recorder.OfType(collector.EventTypeTriggered), 2)
	require.Len(t, env.recorder.OfType(rewards.EventTypeClaimed), 1)
}

func TestTriggerWithNothingHeldIsSkipped(t *testing.T) {
	env := newTestEnv(t, testParams())
	rec := env.do(http.MethodPost, "/v1/collectors/reinvest/trigger", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	require.True(t, decodeJSON[triggerResponse](t, rec).Skipped)

	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/ghost/trigger", nil, nil), http.StatusNotFound)
}

func TestReceiveBooksDirectFees(t *testing.T) {
	env := newTestEnv(t, testParams())
	rec := env.do(http.MethodPost, "/v1/collectors/reinvest/receive", receiveRequest{From: bob.Hex(), Amount: "500"}, nil)
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "500", decodeJSON[map[string]string](t, rec)["received"])

	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/reinvest/receive", receiveRequest{From: bob.Hex(), Amount: "0"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/reinvest/receive", receiveRequest{From: bob.Hex(), Amount: "999999999"}, nil), http.StatusBadRequest)
}

func TestWithdrawReturnsPrincipalAndClaims(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil), http.StatusOK)

	rec := env.do(http.MethodPost, "/v1/withdraw", withdrawRequest{Account: alice.Hex(), Shares: "200000"}, nil)
	requireStatus(t, rec, http.StatusBadRequest)
	require.Equal(t, "caller", decodeJSON[errorResponse](t, rec).Class)

	rec = env.do(http.MethodPost, "/v1/withdraw-all", withdrawRequest{Account: alice.Hex(), Claim: true}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[withdrawResponse](t, rec)
	require.Equal(t, "97000", resp.SharesBurned)
	require.Equal(t, "97000", resp.Principal)
	require.Equal(t, "1999", resp.Claimed)
	require.Equal(t, "0", resp.TotalShares)
}

func TestWithdrawWithClaimIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil), http.StatusOK)
	before := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, "97000", before.Shares)
	require.Equal(t, "1999", before.Withdrawable)

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/rewards", nil, env.adminHeader()), http.StatusOK)
	rec := env.do(http.MethodPost, "/v1/withdraw-all", withdrawRequest{Account: alice.Hex(), Claim: true}, nil)
	requireStatus(t, rec, http.StatusLocked)
	require.Equal(t, "paused", decodeJSON[errorResponse](t, rec).Class)
	requireStatus(t, env.do(http.MethodPost, "/v1/withdraw", withdrawRequest{Account: alice.Hex(), Shares: "1000", Claim: true}, nil), http.StatusLocked)

	after := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, before, after)
	require.Empty(t, env.recorder.OfType(staking.EventTypeWithdrawn))
	entries, err := env.svc.Journal(context.Background(), alice.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, EntryDeposit, entries[0].Kind)

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/resume/rewards", nil, env.adminHeader()), http.StatusOK)
	rec = env.do(http.MethodPost, "/v1/withdraw-all", withdrawRequest{Account: alice.Hex(), Claim: true}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[withdrawResponse](t, rec)
	require.Equal(t, "97000", resp.Principal)
	require.Equal(t, "1999", resp.Claimed)
}

type triggerFailure struct {
	Error  string          `json:"error"`
	Class  string          `json:"class"`
	Result triggerResponse `json:"result"`
}

func TestTriggerReportsSettledSwapWhenForwardFails(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/rewards", nil, env.adminHeader()), http.StatusOK)

	rec := env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil)
	requireStatus(t, rec, http.StatusLocked)
	failure := decodeJSON[triggerFailure](t, rec)
	require.Equal(t, "paused", failure.Class)
	require.Equal(t, "2000", failure.Result.Input)
	require.Equal(t, "2000", failure.Result.SwappedOut)
	require.Equal(t, "0", failure.Result.Forwarded)

	entries, err := env.svc.Journal(context.Background(), "", 0)
	require.NoError(t, err)
	var trigger *Entry
	for i := range entries {
		if entries[i].Kind == EntryTrigger {
			trigger = &entries[i]
		}
	}
	require.NotNil(t, trigger)
	require.Equal(t, "dividend", trigger.Subject)
	require.Contains(t, trigger.Details, "swapped=2000")
	require.Contains(t, trigger.Details, "forward=failed")

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/resume/rewards", nil, env.adminHeader()), http.StatusOK)
	rec = env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil)
	requireStatus(t, rec, http.StatusOK)
	require.Equal(t, "2000", decodeJSON[triggerResponse](t, rec).Forwarded)
}

func mustBig(t *testing.T, raw string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(raw, 10)
	require.True(t, ok, raw)
	return v
}

func TestMassClaimPaysEveryHolder(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: bob.Hex(), Amount: "100000"}, nil), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/collectors/dividend/trigger", nil, nil), http.StatusOK)

	before := map[string]accountResponse{}
	for _, addr := range []string{alice.Hex(), bob.Hex()} {
		before[addr] = decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+addr, nil, nil))
		require.Equal(t, "1999", before[addr].Withdrawable)
	}

	rec := env.do(http.MethodPost, "/v1/mass-claim", massClaimRequest{}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[massClaimResponse](t, rec)
	require.Len(t, resp.Payouts, 2)
	require.Empty(t, resp.Failures)
	require.Equal(t, "3998", resp.Total)

	for addr, prior := range before {
		after := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+addr, nil, nil))
		require.Equal(t, "0", after.Withdrawable)
		delta := new(big.Int).Sub(mustBig(t, after.Balances["RWD"]), mustBig(t, prior.Balances["RWD"]))
		require.Equal(t, prior.Withdrawable, delta.String(), addr)
	}

	entries, err := env.svc.Journal(context.Background(), bob.Hex(), 0)
	require.NoError(t, err)
	kinds := map[string]bool{}
	for _, entry := range entries {
		kinds[entry.Kind] = true
	}
	require.True(t, kinds[EntryDeposit])
	require.True(t, kinds[EntryMassClaim])
}

func TestEmissionThrottle(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)

	status := decodeJSON[emissionResponse](t, env.do(http.MethodGet, "/v1/emission", nil, nil))
	require.True(t, status.Initialized)
	require.False(t, status.Ready)

	requireStatus(t, env.do(http.MethodPost, "/v1/emit", emitRequest{Caller: keeper.Hex()}, nil), http.StatusConflict)

	env.advance(time.Hour)
	status = decodeJSON[emissionResponse](t, env.do(http.MethodGet, "/v1/emission", nil, nil))
	require.True(t, status.Ready)
	require.Equal(t, "3600000000000000000", status.Amount)

	rec := env.do(http.MethodPost, "/v1/emit", emitRequest{Caller: keeper.Hex()}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[emitResponse](t, rec)
	require.Equal(t, uint64(3600), resp.Elapsed)
	require.Equal(t, "36000000000000000", resp.Bounty)
	require.Equal(t, "3564000000000000000", resp.Reinvested)

	requireStatus(t, env.do(http.MethodPost, "/v1/emit", emitRequest{Caller: keeper.Hex()}, nil), http.StatusConflict)
}

func TestEmissionDisabled(t *testing.T) {
	params := testParams()
	params.Emission.Enabled = false
	env := newTestEnv(t, params)
	requireStatus(t, env.do(http.MethodGet, "/v1/emission", nil, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/v1/emit", emitRequest{Caller: keeper.Hex()}, nil), http.StatusBadRequest)
}

func TestAdminPauseBlocksClaims(t *testing.T) {
	env := newTestEnv(t, testParams())

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/rewards", nil, nil), http.StatusUnauthorized)
	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/rewards", nil, map[string]string{"Authorization": "Bearer nope"}), http.StatusUnauthorized)
	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/ledger", nil, env.adminHeader()), http.StatusNotFound)

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/rewards", nil, env.adminHeader()), http.StatusOK)
	rec := env.do(http.MethodPost, "/v1/claim", claimRequest{Account: alice.Hex()}, nil)
	requireStatus(t, rec, http.StatusLocked)
	require.Equal(t, "paused", decodeJSON[errorResponse](t, rec).Class)

	stats := decodeJSON[statsResponse](t, env.do(http.MethodGet, "/v1/stats", nil, nil))
	require.True(t, stats.Pauses["rewards"])

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/resume/rewards", nil, env.adminHeader()), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/claim", claimRequest{Account: alice.Hex()}, nil), http.StatusOK)
}

func TestRequestValidation(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: "bogus", Amount: "1"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "1.5"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", map[string]string{"account": alice.Hex(), "extra": "x"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "0"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodGet, "/v1/journal?limit=-1", nil, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodGet, "/healthz", nil, nil), http.StatusOK)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	env := newTestEnv(t, testParams())
	requireStatus(t, env.do(http.MethodPost, "/v1/deposit", depositRequest{Account: alice.Hex(), Amount: "100000"}, nil), http.StatusOK)

	// Reopening over the same store must not mint genesis twice.
	sys, err := NewSystem(testParams(), env.db, SystemOptions{Now: func() time.Time { return env.now }})
	require.NoError(t, err)
	token, ok := sys.Token("STK")
	require.True(t, ok)
	balance, err := token.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(900000), balance.Uint64())
	account, err := sys.pool.Account(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(97000), account.Shares.Uint64())
}

// redeemParams fixes the STK supply at 3,000,000 against a 300,000 RWD
// redemption reserve.
func redeemParams() config.Global {
	params := testParams()
	params.Genesis[0].Amount = "1000000"
	params.Genesis[2].Amount = "300000"
	return params
}

func TestRedeemBurnsForReserveShare(t *testing.T) {
	env := newTestEnv(t, redeemParams())

	quote := decodeJSON[redeemResponse](t, env.do(http.MethodGet, "/v1/redeem/quote?amount=100000", nil, nil))
	require.Equal(t, "3000000", quote.Supply)
	require.Len(t, quote.Payouts, 1)
	require.Equal(t, "RWD", quote.Payouts[0].Symbol)
	require.Equal(t, "300000", quote.Payouts[0].Held)
	require.Equal(t, "10000", quote.Payouts[0].Amount)

	rec := env.do(http.MethodPost, "/v1/redeem", redeemRequest{Account: alice.Hex(), Amount: "100000"}, nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[redeemResponse](t, rec)
	require.Equal(t, "100000", resp.Burned)
	require.Equal(t, "10000", resp.Payouts[0].Received)

	account := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, "900000", account.Balances["STK"])
	require.Equal(t, "10000", account.Balances["RWD"])

	stk, ok := env.sys.Token("STK")
	require.True(t, ok)
	supply, err := stk.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(2_900_000), supply.Uint64())
	require.Len(t, env.recorder.OfType(redeem.EventTypeRedeemed), 1)

	entries, err := env.svc.Journal(context.Background(), alice.Hex(), 0)
	require.NoError(t, err)
	var found bool
	for _, entry := range entries {
		if entry.Kind == EntryRedeem {
			found = true
			require.Equal(t, "100000", entry.Amount)
			require.Contains(t, entry.Details, "RWD=10000")
		}
	}
	require.True(t, found)
}

func TestRedeemRejections(t *testing.T) {
	env := newTestEnv(t, redeemParams())

	rec := env.do(http.MethodPost, "/v1/redeem", redeemRequest{Account: alice.Hex(), Amount: "1000001"}, nil)
	requireStatus(t, rec, http.StatusBadRequest)
	require.Equal(t, "caller", decodeJSON[errorResponse](t, rec).Class)
	requireStatus(t, env.do(http.MethodPost, "/v1/redeem", redeemRequest{Account: alice.Hex(), Amount: "0"}, nil), http.StatusBadRequest)
	requireStatus(t, env.do(http.MethodGet, "/v1/redeem/quote?amount=3000001", nil, nil), http.StatusBadRequest)

	requireStatus(t, env.do(http.MethodPost, "/v1/admin/pause/redemption", nil, env.adminHeader()), http.StatusOK)
	requireStatus(t, env.do(http.MethodPost, "/v1/redeem", redeemRequest{Account: alice.Hex(), Amount: "10"}, nil), http.StatusLocked)
	requireStatus(t, env.do(http.MethodPost, "/v1/admin/resume/redemption", nil, env.adminHeader()), http.StatusOK)

	account := decodeJSON[accountResponse](t, env.do(http.MethodGet, "/v1/accounts/"+alice.Hex(), nil, nil))
	require.Equal(t, "1000000", account.Balances["STK"])
	require.Equal(t, "0", account.Balances["RWD"])

	params := redeemParams()
	params.Redemption.Enabled = false
	disabled := newTestEnv(t, params)
	requireStatus(t, disabled.do(http.MethodPost, "/v1/redeem", redeemRequest{Account: alice.Hex(), Amount: "10"}, nil), http.StatusBadRequest)
	requireStatus(t, disabled.do(http.MethodGet, "/v1/redeem/quote?amount=10", nil, nil), http.StatusBadRequest)
}
