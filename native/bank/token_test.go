package bank

import (
	"errors"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"stakeledger/core/events"
)

type recordingHook struct {
	received []*uint256.Int
	err      error
}

func (h *recordingHook) Receive(amount *uint256.Int) error {
	h.received = append(h.received, amount)
	return h.err
}

func addr(b byte) ethcommon.Address {
	var a ethcommon.Address
	a[19] = b
	return a
}

func mustBalance(t *testing.T, token *Token, who ethcommon.Address) uint64 {
	t.Helper()
	bal, err := token.BalanceOf(who)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Uint64()
}

func TestTransferWithoutRoutes(t *testing.T) {
	token := NewToken("stk", NewMemoryBalances())
	if token.Symbol() != "STK" {
		t.Fatalf("symbol = %s", token.Symbol())
	}
	if err := token.Mint(addr(1), uint256.NewInt(1_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := token.Transfer(addr(1), addr(2), uint256.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := mustBalance(t, token, addr(1)); got != 600 {
		t.Fatalf("sender balance = %d", got)
	}
	if got := mustBalance(t, token, addr(2)); got != 400 {
		t.Fatalf("recipient balance = %d", got)
	}
	supply, _ := token.TotalSupply()
	if supply.Uint64() != 1_000 {
		t.Fatalf("supply = %s", supply)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	_ = token.Mint(addr(1), uint256.NewInt(10))
	err := token.Transfer(addr(1), addr(2), uint256.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := mustBalance(t, token, addr(1)); got != 10 {
		t.Fatalf("balance mutated: %d", got)
	}
}

func TestTransferTaxRoutesFeesAndNotifiesHook(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	recorder := &events.Recorder{}
	token.SetEmitter(recorder)
	hook := &recordingHook{}
	if err := token.AddFeeRoute(FeeRoute{Name: "collector", Bps: 500, Sink: addr(9), Hook: hook}); err != nil {
		t.Fatalf("route: %v", err)
	}
	_ = token.Mint(addr(1), uint256.NewInt(1_000))
	if err := token.Transfer(addr(1), addr(2), uint256.NewInt(1_000)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := mustBalance(t, token, addr(2)); got != 950 {
		t.Fatalf("recipient = %d, want 950", got)
	}
	if got := mustBalance(t, token, addr(9)); got != 50 {
		t.Fatalf("sink = %d, want 50", got)
	}
	if len(hook.received) != 1 || hook.received[0].Uint64() != 50 {
		t.Fatalf("hook not notified: %v", hook.received)
	}
	if len(recorder.OfType(EventTypeTransfer)) != 1 {
		t.Fatalf("expected transfer event")
	}

	// Transfers out of the sink are exempt.
	if err := token.Transfer(addr(9), addr(3), uint256.NewInt(50)); err != nil {
		t.Fatalf("sink transfer: %v", err)
	}
	if got := mustBalance(t, token, addr(3)); got != 50 {
		t.Fatalf("exempt transfer taxed: %d", got)
	}
}

func TestFeeHookFailureDoesNotRevert(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	recorder := &events.Recorder{}
	token.SetEmitter(recorder)
	hook := &recordingHook{err: errors.New("boom")}
	_ = token.AddFeeRoute(FeeRoute{Name: "collector", Bps: 1_000, Sink: addr(9), Hook: hook})
	_ = token.Mint(addr(1), uint256.NewInt(100))
	if err := token.Transfer(addr(1), addr(2), uint256.NewInt(100)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := mustBalance(t, token, addr(9)); got != 10 {
		t.Fatalf("sink = %d", got)
	}
	failed := recorder.OfType(EventTypeFeeHookFailed)
	if len(failed) != 1 || failed[0].Attr("route") != "collector" {
		t.Fatalf("expected hook failure event, got %+v", failed)
	}
}

func TestAddFeeRouteValidation(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	if err := token.AddFeeRoute(FeeRoute{Bps: 10, Sink: ethcommon.Address{}}); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected invalid route for empty sink, got %v", err)
	}
	if err := token.AddFeeRoute(FeeRoute{Bps: 6_000, Sink: addr(8)}); err != nil {
		t.Fatalf("route: %v", err)
	}
	if err := token.AddFeeRoute(FeeRoute{Bps: 5_000, Sink: addr(9)}); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected total cap error, got %v", err)
	}
}

func TestBlockedAddressRejectsTransfers(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	_ = token.Mint(addr(1), uint256.NewInt(100))
	token.Block(addr(2))
	if err := token.Transfer(addr(1), addr(2), uint256.NewInt(10)); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if got := mustBalance(t, token, addr(1)); got != 100 {
		t.Fatalf("rejected transfer moved funds: %d", got)
	}
	token.Unblock(addr(2))
	if err := token.Transfer(addr(1), addr(2), uint256.NewInt(10)); err != nil {
		t.Fatalf("transfer after unblock: %v", err)
	}
}

func TestBurnShrinksSupply(t *testing.T) {
	token := NewToken("STK", NewMemoryBalances())
	if err := token.Mint(addr(1), uint256.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := token.Burn(addr(1), uint256.NewInt(501)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := token.Burn(addr(1), uint256.NewInt(200)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := mustBalance(t, token, addr(1)); got != 300 {
		t.Fatalf("balance after burn = %d", got)
	}
	supply, _ := token.TotalSupply()
	if supply.Uint64() != 300 {
		t.Fatalf("supply after burn = %s", supply)
	}
	token.Block(addr(1))
	if err := token.Burn(addr(1), uint256.NewInt(1)); !errors.Is(err, ErrTransferRejected) {
		t.Fatalf("expected rejection for blocked holder, got %v", err)
	}
}
