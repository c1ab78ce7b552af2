package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// EncodeParams renders params as key-sorted, url-encoded key=value pairs
// joined by '&'. This string is what gets signed.
func EncodeParams(params map[string]any) string {
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
func Sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedQuery appends the signature as the final parameter.
func signedQuery(secret string, params map[string]any) string {
	payload := EncodeParams(params)
	return payload + "&signature=" + Sign(secret, payload)
}
