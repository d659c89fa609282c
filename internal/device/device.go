// Package device derives a stable identifier for the machine a learner is
// using. The identifier is low entropy: two machines with an identical
// configuration produce the same value.
package device

import (
	"encoding/hex"
	"os"
	"os/user"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 24

var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// Signals are the environment traits hashed into a fingerprint.
type Signals map[string]string

// Collect gathers the signals available on the local machine.
func Collect() Signals {
	s := Signals{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
		"cpus": strconv.Itoa(runtime.NumCPU()),
	}
	if h, err := os.Hostname(); err == nil {
		s["hostname"] = h
	}
	if u, err := user.Current(); err == nil {
		s["user"] = u.Username
	}
	for _, key := range []string{"TERM", "LANG", "TZ"} {
		if v := os.Getenv(key); v != "" {
			s[strings.ToLower(key)] = v
		}
	}
	for _, path := range machineIDPaths {
		if b, err := os.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				s["machine_id"] = id
				break
			}
		}
	}
	return s
}

// WithClient adds traits reported by a UI shell (browser user agent and
// screen size) to a copy of s.
func (s Signals) WithClient(userAgent string, width, height int) Signals {
	out := make(Signals, len(s)+2)
	for k, v := range s {
		out[k] = v
	}
	if userAgent != "" {
		out["user_agent"] = userAgent
	}
	if width > 0 && height > 0 {
		out["screen"] = strconv.Itoa(width) + "x" + strconv.Itoa(height)
	}
	return out
}

// Fingerprint hashes the signals in key order. The result is deterministic
// for a given set of signals.
func (s Signals) Fingerprint() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s[k])
		b.WriteByte('\n')
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// Local returns the fingerprint of the current machine.
func Local() string {
	return Collect().Fingerprint()
}
