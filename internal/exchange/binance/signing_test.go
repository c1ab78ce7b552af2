package binance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeParamsSortsKeys(t *testing.T) {
	got := EncodeParams(map[string]any{"symbol": "BTCUSDT", "timestamp": 2, "recvWindow": 1})
	assert.Equal(t, "recvWindow=1&symbol=BTCUSDT&timestamp=2", got)
}

func TestEncodeParamsEscapesValues(t *testing.T) {
	got := EncodeParams(map[string]any{"note": "a b&c"})
	assert.Equal(t, "note=a+b%26c", got)
	assert.Equal(t, "", EncodeParams(nil))
}

func TestSignKnownVector(t *testing.T) {
	payload := "recvWindow=5000&symbol=BTCUSDT&timestamp=1700000000000"
	assert.Equal(t,
		"5c34482870d881d3f4162b4e1a632b920a0e61156757c19f0487afe9a93d5a64",
		Sign("my-secret", payload))
}

func TestSignedQueryPutsSignatureLast(t *testing.T) {
	q := signedQuery("my-secret", map[string]any{
		"symbol":     "BTCUSDT",
		"timestamp":  int64(1700000000000),
		"recvWindow": 5000,
	})
	assert.Equal(t,
		"recvWindow=5000&symbol=BTCUSDT&timestamp=1700000000000&signature=5c34482870d881d3f4162b4e1a632b920a0e61156757c19f0487afe9a93d5a64",
		q)
	parts := strings.Split(q, "&")
	assert.True(t, strings.HasPrefix(parts[len(parts)-1], "signature="))
}
