package domain

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// TokenFingerprint derives a short stable digest of a scan token for logs,
// spans and metrics. Raw QR payloads never appear in telemetry.
func TokenFingerprint(token string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(token))
}
