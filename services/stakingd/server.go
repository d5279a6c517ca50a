package stakingd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakeledger/config"
	nativecommon "stakeledger/native/common"
	"stakeledger/native/emission"
	"stakeledger/native/redeem"
	"stakeledger/native/staking"
)

const maxBodyBytes = 1 << 20

// Server exposes the ledger over HTTP.
type Server struct {
	svc     *Service
	auth    *AdminAuthenticator
	limiter *RateLimiter
	logger  *slog.Logger
	router  http.Handler
}

// NewServer builds the router. A nil limiter disables rate limiting.
func NewServer(svc *Service, auth *AdminAuthenticator, limiter *RateLimiter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{svc: svc, auth: auth, limiter: limiter, logger: logger.With("component", "http")}
	srv.router = srv.buildRouter()
	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := WithRequestID(req.Context(), chimw.GetReqID(req.Context()))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		if s.limiter != nil {
			api.Use(s.limiter.Middleware)
		}
		api.Post("/deposit", s.handleDeposit)
		api.Post("/withdraw", s.handleWithdraw)
		api.Post("/withdraw-all", s.handleWithdrawAll)
		api.Post("/claim", s.handleClaim)
		api.Post("/mass-claim", s.handleMassClaim)
		api.Post("/collectors/{name}/receive", s.handleReceive)
		api.Post("/collectors/{name}/trigger", s.handleTrigger)
		api.Post("/emit", s.handleEmit)
		api.Post("/redeem", s.handleRedeem)
		api.Get("/redeem/quote", s.handleRedeemQuote)
		api.Get("/accounts/{address}", s.handleAccount)
		api.Get("/withdrawable/{address}", s.handleWithdrawable)
		api.Get("/stats", s.handleStats)
		api.Get("/emission", s.handleEmission)
		api.Get("/audit", s.handleAudit)
		api.Get("/journal", s.handleJournal)

		api.Route("/admin", func(admin chi.Router) {
			if s.auth != nil {
				admin.Use(s.auth.Middleware)
			} else {
				admin.Use(func(http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
						writeError(w, http.StatusServiceUnavailable, "admin authentication not configured")
					})
				})
			}
			admin.Post("/pause/{module}", s.handlePause(true))
			admin.Post("/resume/{module}", s.handlePause(false))
		})
	})
	return r
}

type errorResponse struct {
	Error  string      `json:"error"`
	Class  string      `json:"class,omitempty"`
	Result interface{} `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps an error class onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownCollector), errors.Is(err, ErrUnknownModule):
		return http.StatusNotFound
	case errors.Is(err, emission.ErrNotReady), errors.Is(err, nativecommon.ErrReentrantCall):
		return http.StatusConflict
	}
	switch nativecommon.Classify(err) {
	case nativecommon.ClassCaller:
		return http.StatusBadRequest
	case nativecommon.ClassPaused:
		return http.StatusLocked
	case nativecommon.ClassCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error, result interface{}) {
	class := nativecommon.Classify(err)
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error(), Class: string(class), Result: result})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func parseAddress(w http.ResponseWriter, field, raw string) (ethcommon.Address, bool) {
	addr, err := config.ParseAddress(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", field, err))
		return ethcommon.Address{}, false
	}
	return addr, true
}

func parseAmount(w http.ResponseWriter, field, raw string) (*uint256.Int, bool) {
	amount, err := nativecommon.ParseAmount(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", field, err))
		return nil, false
	}
	return amount, true
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type depositRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type depositResponse struct {
	Account        string `json:"account"`
	Requested      string `json:"requested"`
	Received       string `json:"received"`
	SharesMinted   string `json:"sharesMinted"`
	TotalShares    string `json:"totalShares"`
	TotalPrincipal string `json:"totalPrincipal"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, ok := parseAddress(w, "account", req.Account)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, "amount", req.Amount)
	if !ok {
		return
	}
	receipt, err := s.svc.Deposit(r.Context(), addr, amount)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{
		Account:        receipt.Address.Hex(),
		Requested:      dec(receipt.Requested),
		Received:       dec(receipt.Received),
		SharesMinted:   dec(receipt.SharesMinted),
		TotalShares:    dec(receipt.TotalShares),
		TotalPrincipal: dec(receipt.TotalPrincipal),
	})
}

type withdrawRequest struct {
	Account string `json:"account"`
	Shares  string `json:"shares"`
	Claim   bool   `json:"claim"`
}

type withdrawResponse struct {
	Account        string `json:"account"`
	SharesBurned   string `json:"sharesBurned"`
	Principal      string `json:"principal"`
	Claimed        string `json:"claimed,omitempty"`
	TotalShares    string `json:"totalShares"`
	TotalPrincipal string `json:"totalPrincipal"`
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, ok := parseAddress(w, "account", req.Account)
	if !ok {
		return
	}
	shares, ok := parseAmount(w, "shares", req.Shares)
	if !ok {
		return
	}
	receipt, err := s.svc.Withdraw(r.Context(), addr, shares, req.Claim)
	s.writeWithdraw(w, receipt, err)
}

func (s *Server) handleWithdrawAll(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, ok := parseAddress(w, "account", req.Account)
	if !ok {
		return
	}
	receipt, err := s.svc.WithdrawAll(r.Context(), addr, req.Claim)
	s.writeWithdraw(w, receipt, err)
}

func (s *Server) writeWithdraw(w http.ResponseWriter, receipt *staking.WithdrawReceipt, err error) {
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	resp := withdrawResponse{
		Account:        receipt.Address.Hex(),
		SharesBurned:   dec(receipt.SharesBurned),
		Principal:      dec(receipt.Principal),
		TotalShares:    dec(receipt.TotalShares),
		TotalPrincipal: dec(receipt.TotalPrincipal),
	}
	if receipt.Claimed != nil {
		resp.Claimed = receipt.Claimed.Dec()
	}
	writeJSON(w, http.StatusOK, resp)
}

type claimRequest struct {
	Account string `json:"account"`
}

type claimResponse struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, ok := parseAddress(w, "account", req.Account)
	if !ok {
		return
	}
	paid, err := s.svc.Claim(r.Context(), addr)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Account: addr.Hex(), Amount: dec(paid)})
}

type massClaimRequest struct {
	Accounts []string `json:"accounts"`
}

type massClaimFailure struct {
	Account string `json:"account"`
	Error   string `json:"error"`
	Class   string `json:"class"`
}

type massClaimResponse struct {
	Payouts  []claimResponse   `json:"payouts"`
	Failures []massClaimFailure `json:"failures"`
	Total    string             `json:"total"`
}

func (s *Server) handleMassClaim(w http.ResponseWriter, r *http.Request) {
	var req massClaimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addrs := make([]ethcommon.Address, 0, len(req.Accounts))
	for i, raw := range req.Accounts {
		addr, ok := parseAddress(w, fmt.Sprintf("accounts[%d]", i), raw)
		if !ok {
			return
		}
		addrs = append(addrs, addr)
	}
	result, err := s.svc.MassClaim(r.Context(), addrs)
	var resp *massClaimResponse
	if result != nil {
		resp = &massClaimResponse{Payouts: []claimResponse{}, Failures: []massClaimFailure{}, Total: dec(result.Total)}
		for _, payout := range result.Payouts {
			resp.Payouts = append(resp.Payouts, claimResponse{Account: payout.Address.Hex(), Amount: dec(payout.Amount)})
		}
		for _, failure := range result.Failures {
			resp.Failures = append(resp.Failures, massClaimFailure{
				Account: failure.Address.Hex(),
				Error:   failure.Err.Error(),
				Class:   string(nativecommon.Classify(failure.Err)),
			})
		}
	}
	if err != nil {
		s.fail(w, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type receiveRequest struct {
	From   string `json:"from"`
	Amount string `json:"amount"`
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	var req receiveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	from, ok := parseAddress(w, "from", req.From)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, "amount", req.Amount)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	received, err := s.svc.Receive(r.Context(), name, from, amount)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"collector": name, "received": dec(received)})
}

type triggerResponse struct {
	Collector  string `json:"collector"`
	Kind       string `json:"kind"`
	Input      string `json:"input"`
	SwappedOut string `json:"swappedOut"`
	Forwarded  string `json:"forwarded"`
	Skipped    bool   `json:"skipped"`
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Trigger(r.Context(), chi.URLParam(r, "name"))
	var resp interface{}
	if result != nil {
		resp = triggerResponse{
			Collector:  result.Collector,
			Kind:       string(result.Kind),
			Input:      dec(result.Input),
			SwappedOut: dec(result.SwappedOut),
			Forwarded:  dec(result.Forwarded),
			Skipped:    result.Skipped,
		}
	}
	if err != nil {
		s.fail(w, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type emitRequest struct {
	Caller string `json:"caller"`
}

type emitResponse struct {
	Caller     string `json:"caller"`
	Elapsed    uint64 `json:"elapsed"`
	Amount     string `json:"amount"`
	Bounty     string `json:"bounty"`
	Reinvested string `json:"reinvested"`
	Time       int64  `json:"time"`
	Block      uint64 `json:"block"`
}

func (s *Server) handleEmit(w http.ResponseWriter, r *http.Request) {
	var req emitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	caller, ok := parseAddress(w, "caller", req.Caller)
	if !ok {
		return
	}
	result, err := s.svc.Emit(r.Context(), caller)
	var resp interface{}
	if result != nil {
		resp = emitResponse{
			Caller:     result.Caller.Hex(),
			Elapsed:    result.Elapsed,
			Amount:     dec(result.Amount),
			Bounty:     dec(result.Bounty),
			Reinvested: dec(result.Reinvested),
			Time:       result.Time,
			Block:      result.Block,
		}
	}
	if err != nil {
		s.fail(w, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type redeemRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type payoutResponse struct {
	Symbol   string `json:"symbol"`
	Held     string `json:"held"`
	Amount   string `json:"amount"`
	Received string `json:"received,omitempty"`
}

type redeemResponse struct {
	Account string           `json:"account,omitempty"`
	Burned  string           `json:"burned"`
	Supply  string           `json:"supply"`
	Payouts []payoutResponse `json:"payouts"`
}

func payoutsResponse(payouts []redeem.Payout, received bool) []payoutResponse {
	out := make([]payoutResponse, 0, len(payouts))
	for _, p := range payouts {
		resp := payoutResponse{Symbol: p.Symbol, Held: dec(p.Held), Amount: dec(p.Amount)}
		if received {
			resp.Received = dec(p.Received)
		}
		out = append(out, resp)
	}
	return out
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	addr, ok := parseAddress(w, "account", req.Account)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, "amount", req.Amount)
	if !ok {
		return
	}
	receipt, err := s.svc.Redeem(r.Context(), addr, amount)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, redeemResponse{
		Account: receipt.Holder.Hex(),
		Burned:  dec(receipt.Burned),
		Supply:  dec(receipt.SupplyBefore),
		Payouts: payoutsResponse(receipt.Payouts, true),
	})
}

func (s *Server) handleRedeemQuote(w http.ResponseWriter, r *http.Request) {
	amount, ok := parseAmount(w, "amount", r.URL.Query().Get("amount"))
	if !ok {
		return
	}
	quote, err := s.svc.RedeemQuote(amount)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, redeemResponse{
		Burned:  dec(quote.Amount),
		Supply:  dec(quote.Supply),
		Payouts: payoutsResponse(quote.Payouts, false),
	})
}

type accountResponse struct {
	Account      string            `json:"account"`
	Shares       string            `json:"shares"`
	StakedValue  string            `json:"stakedValue"`
	Deposited    string            `json:"deposited"`
	Withdrawn    string            `json:"withdrawn"`
	Withdrawable string            `json:"withdrawable"`
	Claimed      string            `json:"claimed"`
	Balances     map[string]string `json:"balances"`
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(w, "address", chi.URLParam(r, "address"))
	if !ok {
		return
	}
	view, err := s.svc.Account(addr)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	resp := accountResponse{
		Account:      view.Address.Hex(),
		Shares:       dec(view.Shares),
		StakedValue:  dec(view.StakedValue),
		Deposited:    dec(view.Deposited),
		Withdrawn:    dec(view.Withdrawn),
		Withdrawable: dec(view.Withdrawable),
		Claimed:      dec(view.Claimed),
		Balances:     make(map[string]string, len(view.Balances)),
	}
	for symbol, balance := range view.Balances {
		resp.Balances[symbol] = dec(balance)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdrawable(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(w, "address", chi.URLParam(r, "address"))
	if !ok {
		return
	}
	amount, err := s.svc.Withdrawable(addr)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, claimResponse{Account: addr.Hex(), Amount: dec(amount)})
}

type collectorResponse struct {
	Name           string `json:"name"`
	TotalReceived  string `json:"totalReceived"`
	TotalSwappedIn string `json:"totalSwappedIn"`
	TotalForwarded string `json:"totalForwarded"`
	Triggers       uint64 `json:"triggers"`
	Failures       uint64 `json:"failures"`
	LastTrigger    int64  `json:"lastTrigger"`
}

type statsResponse struct {
	TotalShares     string              `json:"totalShares"`
	TotalPrincipal  string              `json:"totalPrincipal"`
	TotalReinvested string              `json:"totalReinvested"`
	ValuePerShare   string              `json:"valuePerShare"`
	RewardBalance   string              `json:"rewardBalance"`
	Undistributed   string              `json:"undistributed"`
	TotalDeposited  string              `json:"totalRevenue"`
	TotalClaimed    string              `json:"totalClaimed"`
	Holders         uint64              `json:"holders"`
	Collectors      []collectorResponse `json:"collectors"`
	Pauses          map[string]bool     `json:"pauses"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats()
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	resp := statsResponse{
		TotalShares:     dec(stats.Pool.TotalShares),
		TotalPrincipal:  dec(stats.Pool.TotalPrincipal),
		TotalReinvested: dec(stats.Pool.TotalReinvested),
		ValuePerShare:   dec(stats.ValuePerShare),
		RewardBalance:   dec(stats.Ledger.RewardBalance),
		Undistributed:   dec(stats.Ledger.Undistributed),
		TotalDeposited:  dec(stats.Ledger.TotalDeposited),
		TotalClaimed:    dec(stats.Ledger.TotalClaimed),
		Holders:         stats.Ledger.Holders,
		Collectors:      []collectorResponse{},
		Pauses:          stats.Pauses,
	}
	for _, st := range stats.Collectors {
		resp.Collectors = append(resp.Collectors, collectorResponse{
			Name:           st.Name,
			TotalReceived:  dec(st.TotalReceived),
			TotalSwappedIn: dec(st.TotalSwappedIn),
			TotalForwarded: dec(st.TotalForwarded),
			Triggers:       st.Triggers,
			Failures:       st.Failures,
			LastTrigger:    st.LastTrigger,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type emissionResponse struct {
	Initialized bool   `json:"initialized"`
	Ready       bool   `json:"ready"`
	Mode        string `json:"mode"`
	Interval    uint64 `json:"interval"`
	Elapsed     uint64 `json:"elapsed"`
	Amount      string `json:"amount"`
	Bounty      string `json:"bounty"`
	Reserve     string `json:"reserve"`
	LastTime    int64  `json:"lastTime"`
	LastBlock   uint64 `json:"lastBlock"`
}

func (s *Server) handleEmission(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.EmissionStatus()
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, emissionResponse{
		Initialized: status.Initialized,
		Ready:       status.Ready,
		Mode:        status.Mode.String(),
		Interval:    status.Interval,
		Elapsed:     status.Elapsed,
		Amount:      dec(status.Amount),
		Bounty:      dec(status.Bounty),
		Reserve:     dec(status.Reserve),
		LastTime:    status.LastTime,
		LastBlock:   status.LastBlock,
	})
}

type auditResponse struct {
	Healthy         bool   `json:"healthy"`
	Accounts        uint64 `json:"accounts"`
	TotalShares     string `json:"totalShares"`
	SumShares       string `json:"sumShares"`
	RewardBalance   string `json:"rewardBalance"`
	SumWithdrawable string `json:"sumWithdrawable"`
	Undistributed   string `json:"undistributed"`
	VaultBalance    string `json:"vaultBalance"`
	Surplus         string `json:"surplus"`
	SharesConserved bool   `json:"sharesConserved"`
	Solvent         bool   `json:"solvent"`
	VaultCoversOwed bool   `json:"vaultCoversOwed"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Audit()
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	if !report.Healthy() {
		s.logger.Error("ledger audit failed", "solvent", report.Solvent, "sharesConserved", report.SharesConserved)
	}
	writeJSON(w, http.StatusOK, auditResponse{
		Healthy:         report.Healthy(),
		Accounts:        report.Accounts,
		TotalShares:     dec(report.TotalShares),
		SumShares:       dec(report.SumShares),
		RewardBalance:   dec(report.RewardBalance),
		SumWithdrawable: dec(report.SumWithdrawable),
		Undistributed:   dec(report.Undistributed),
		VaultBalance:    dec(report.VaultBalance),
		Surplus:         dec(report.Surplus),
		SharesConserved: report.SharesConserved,
		Solvent:         report.Solvent,
		VaultCoversOwed: report.VaultCoversOwed,
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	account := ""
	if raw := strings.TrimSpace(r.URL.Query().Get("account")); raw != "" {
		addr, ok := parseAddress(w, "account", raw)
		if !ok {
			return
		}
		account = addr.Hex()
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	entries, err := s.svc.Journal(r.Context(), account, limit)
	if err != nil {
		s.fail(w, err, nil)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

func (s *Server) handlePause(paused bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		module := chi.URLParam(r, "module")
		if err := s.svc.SetPaused(r.Context(), module, paused); err != nil {
			s.fail(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"module": module, "paused": paused, "at": time.Now().UTC()})
	}
}
