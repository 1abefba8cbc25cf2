package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/hdtickets/admission/internal/request"
)

// fingerprintHeaders are the request headers that contribute to the
// fingerprint alongside any client-reported attributes.
var fingerprintHeaders = []string{
	"User-Agent",
	"Accept-Language",
	"Accept-Encoding",
}

// Fingerprint derives a stable device identifier from the request: a SHA-256
// hash over the JSON encoding of the sorted attribute set. The attribute set
// combines identifying headers, the source IP, and optional client-reported
// signals (screen, timezone, platform, canvas, webgl).
func Fingerprint(req *request.Request) string {
	attributes := map[string]string{
		"ip": req.IP,
	}
	for _, header := range fingerprintHeaders {
		if value := req.Header(header); value != "" {
			attributes[header] = value
		}
	}
	for key, value := range req.ClientAttributes {
		if value != "" {
			attributes[key] = value
		}
	}

	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Encode as an ordered list of pairs so the hash input is deterministic.
	pairs := make([][2]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, [2]string{key, attributes[key]})
	}

	encoded, err := json.Marshal(pairs)
	if err != nil {
		// Marshalling string pairs cannot fail.
		panic(err)
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
