package smite

import (
	"crypto/md5" //nolint:gosec // the remote API's signing scheme is MD5
	"encoding/hex"
)

// Sign derives the per-call request signature: the hex MD5 digest of the
// developer id, method name, auth key, and timestamp byte-concatenated in
// that exact order with no delimiter. Any reordering or separator produces
// a signature the API rejects, observable only as an authentication
// failure from the remote side.
func Sign(devID, method, authKey, timestamp string) string {
	sum := md5.Sum([]byte(devID + method + authKey + timestamp)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
