package stakingd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stakeledger/config"
	"stakeledger/core/events"
	"stakeledger/storage"
)

var (
	alice  = ethcommon.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob    = ethcommon.HexToAddress("0x0000000000000000000000000000000000000b0b")
	keeper = ethcommon.HexToAddress("0x00000000000000000000000000000000000000ee")
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	t        *testing.T
	now      time.Time
	db       storage.Database
	recorder *events.Recorder
	sys      *System
	svc      *Service
	journal  *Journal
	server   *Server
	admin    AdminConfig
}

func testParams() config.Global {
	params := config.Default()
	params.Genesis = append(params.Genesis,
		config.Allocation{Asset: "STK", Address: alice.Hex(), Amount: "1000000"},
		config.Allocation{Asset: "STK", Address: bob.Hex(), Amount: "1000000"},
	)
	return params
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	journal, err := NewJournal(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = journal.Close() })
	return journal
}

func newTestEnv(t *testing.T, params config.Global) *testEnv {
	t.Helper()
	env := &testEnv{
		t:        t,
		now:      time.Unix(1_700_000_000, 0).UTC(),
		db:       storage.NewMemDB(),
		recorder: &events.Recorder{},
		admin:    AdminConfig{JWTSecret: testSecret, Issuer: "stakingd"},
	}
	sys, err := NewSystem(params, env.db, SystemOptions{
		Emitter:   env.recorder,
		BlockTime: 5 * time.Second,
		Now:       func() time.Time { return env.now },
	})
	require.NoError(t, err)
	env.sys = sys
	env.journal = openTestJournal(t)
	env.svc = NewService(sys, env.journal, nil, discardLogger())
	auth, err := NewAdminAuthenticator(env.admin, discardLogger())
	require.NoError(t, err)
	env.server = NewServer(env.svc, auth, nil, discardLogger())
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) adminHeader() map[string]string {
	e.t.Helper()
	token, err := SignAdminToken(e.admin, "operator", time.Hour)
	require.NoError(e.t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }
