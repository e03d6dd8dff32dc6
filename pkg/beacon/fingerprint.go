// fingerprint.go derives stable grouping keys for events.

package beacon

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var digitPattern = regexp.MustCompile(`\d`)

// Fingerprint returns the grouping key for an envelope. An explicit
// caller-supplied fingerprint takes precedence; otherwise the key is derived
// deterministically from the stable parts of the event, with digits in the
// message zeroed so ids and counters do not split groups.
func Fingerprint(e *Envelope) string {
	if e.Fingerprint != "" {
		return e.Fingerprint
	}

	errCode := ""
	if e.Error != nil {
		errCode = e.Error.Code
	}

	seed := strings.Join([]string{
		string(e.EventType),
		string(e.Level),
		normalizeMessage(e.Message),
		e.Route,
		e.Screen,
		e.Role,
		errCode,
	}, "|")

	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:16])
}

// normalizeMessage zeroes digits so variable ids, counts and timestamps
// embedded in a message collapse into one group.
func normalizeMessage(msg string) string {
	return digitPattern.ReplaceAllString(strings.TrimSpace(msg), "0")
}
