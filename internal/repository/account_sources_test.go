package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"DeskStream/pkg/cache"
	xhttp "DeskStream/pkg/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const accountJSON = `{
	"metrics": {"netEquity": "125000.50", "buyingPower": 40000, "activePositions": 2},
	"positions": [
		{"symbol": "NVDA", "qty": "10", "targetQty": "15", "currentPrice": "118.40", "unrealizedPlPc": "0.12"},
		{"symbol": "TSLA", "qty": 5, "targetQty": 5, "currentPrice": 240.1, "unrealizedPlPc": -0.03}
	]
}`

type mapReader map[string]string

func (m mapReader) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal([]byte(raw), dest)
}

func TestRedisAccountSource(t *testing.T) {
	src := NewRedisAccountSource(mapReader{"deskstream:account": accountJSON}, "deskstream:account")

	snap, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Metrics.NetEquity.Equal(decimal.RequireFromString("125000.50")))
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "5", snap.Positions[0].Delta().String())

	_, err = NewRedisAccountSource(mapReader{}, "missing").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoAccountData)
}

func TestHTTPAccountSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(accountJSON))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := xhttp.NewClient()

	snap, err := NewHTTPAccountSource(client, srv.URL+"/account").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Metrics.ActivePositions)
	assert.Equal(t, "TSLA", snap.Positions[1].Symbol)

	_, err = NewHTTPAccountSource(client, srv.URL+"/empty").Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrNoAccountData))

	_, err = NewHTTPAccountSource(client, srv.URL+"/broken").Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
