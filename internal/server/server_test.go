package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelparity/modelparity/internal/testutil"
	"github.com/modelparity/modelparity/pkg/catalog"
	"github.com/modelparity/modelparity/pkg/diff"
)

func testInventories() (*catalog.Inventory, *catalog.Inventory) {
	left := catalog.NewInventory("banka", []catalog.Model{
		{
			Key:  catalog.MakeKey("silver", "finance", "accounts"),
			Repo: "banka",
			Columns: []catalog.Column{
				{Name: "account_id", Expression: "account_id"},
				{Name: "status", Expression: "upper(status)", Transformed: true},
			},
			Upstream:    []string{"raw_accounts"},
			Fingerprint: "fp-accounts",
		},
		{
			Key:  catalog.MakeKey("gold", "sales", "orders"),
			Repo: "banka",
			Columns: []catalog.Column{
				{Name: "order_id", Expression: "order_id"},
			},
			Fingerprint: "fp-orders",
		},
	})

	right := catalog.NewInventory("bankb", []catalog.Model{
		{
			Key:  catalog.MakeKey("silver", "finance", "accounts"),
			Repo: "bankb",
			Columns: []catalog.Column{
				{Name: "account_id", Expression: "account_id"},
				{Name: "status", Expression: "upper(status)", Transformed: true},
			},
			Upstream:    []string{"raw_accounts"},
			Fingerprint: "fp-accounts",
		},
		{
			Key:  catalog.MakeKey("silver", "risk", "scores"),
			Repo: "bankb",
			Columns: []catalog.Column{
				{Name: "score", Expression: "score"},
			},
			Fingerprint: "fp-scores",
		},
	})

	return left, right
}

func loadedServer(t *testing.T) *Server {
	t.Helper()

	left, right := testInventories()
	cmp := diff.NewComparator(diff.Options{Logger: testutil.NewTestLogger(t)})
	rep := cmp.Compare(left, right)

	s := New(Config{Addr: ":0", Logger: testutil.NewTestLogger(t)})
	s.Update(left, right, rep)
	return s
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Run("empty server reports ok without labels", func(t *testing.T) {
		s := New(Config{Addr: ":0"})
		rec := doRequest(t, s, "/api/health")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Empty(t, resp.LeftLabel)
	})

	t.Run("loaded server reports labels", func(t *testing.T) {
		s := loadedServer(t)
		rec := doRequest(t, s, "/api/health")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "banka", resp.LeftLabel)
		assert.Equal(t, "bankb", resp.RightLabel)
		assert.False(t, resp.UpdatedAt.IsZero())
	})
}

func TestInventoryEndpoint(t *testing.T) {
	s := loadedServer(t)

	rec := doRequest(t, s, "/api/inventories/left")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	inv, err := catalog.LoadSnapshot(rec.Body)
	require.NoError(t, err, "inventory endpoint must emit a loadable snapshot")
	assert.Equal(t, "banka", inv.Label())
	assert.Equal(t, 2, inv.Len())

	rec = doRequest(t, s, "/api/inventories/right")
	require.Equal(t, http.StatusOK, rec.Code)
	inv, err = catalog.LoadSnapshot(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "bankb", inv.Label())
}

func TestInventoryEndpoint_UnknownSide(t *testing.T) {
	s := loadedServer(t)

	rec := doRequest(t, s, "/api/inventories/middle")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown side")
}

func TestInventoryEndpoint_NotLoaded(t *testing.T) {
	s := New(Config{Addr: ":0"})

	rec := doRequest(t, s, "/api/inventories/left")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no comparison loaded")
}

func TestModelEndpoint(t *testing.T) {
	s := loadedServer(t)

	t.Run("existing model", func(t *testing.T) {
		rec := doRequest(t, s, "/api/models/left/silver.finance.accounts")
		require.Equal(t, http.StatusOK, rec.Code)

		var m catalog.Model
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
		assert.Equal(t, "silver.finance.accounts", m.Key)
		assert.Len(t, m.Columns, 2)
		assert.Equal(t, []string{"raw_accounts"}, m.Upstream)
	})

	t.Run("missing model", func(t *testing.T) {
		rec := doRequest(t, s, "/api/models/left/silver.finance.ghost")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "model not found: silver.finance.ghost")
	})

	t.Run("unknown side", func(t *testing.T) {
		rec := doRequest(t, s, "/api/models/center/silver.finance.accounts")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown side")
	})
}

func TestComparisonEndpoint(t *testing.T) {
	s := loadedServer(t)

	rec := doRequest(t, s, "/api/comparison")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep diff.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))

	assert.Equal(t, "banka", rep.LeftLabel)
	assert.Equal(t, "bankb", rep.RightLabel)
	assert.Equal(t, 1, rep.Summary.MatchedCount)
	assert.Equal(t, 1, rep.Summary.IdenticalCount, "equal fingerprints should be identical")
	assert.Equal(t, 1, rep.Summary.LeftOnlyCount)
	assert.Equal(t, 1, rep.Summary.RightOnlyCount)
}

func TestComparisonEndpoint_NotLoaded(t *testing.T) {
	s := New(Config{Addr: ":0"})

	rec := doRequest(t, s, "/api/comparison")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpdateReplacesState(t *testing.T) {
	s := loadedServer(t)

	newLeft := catalog.NewInventory("bankc", nil)
	newRight := catalog.NewInventory("bankd", nil)
	cmp := diff.NewComparator(diff.Options{})
	s.Update(newLeft, newRight, cmp.Compare(newLeft, newRight))

	rec := doRequest(t, s, "/api/health")
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bankc", resp.LeftLabel)
	assert.Equal(t, "bankd", resp.RightLabel)
}
