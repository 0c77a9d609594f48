// Package featureflags evaluates runtime feature toggles configured as a
// comma-separated key=value list, e.g. "ai_assistant=on,search_match_any=25%".
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// AIAssistant gates the assistant proxy endpoint.
	AIAssistant = "ai_assistant"
	// SearchMatchAny switches user search from all-terms to any-term matching.
	SearchMatchAny = "search_match_any"
)

// Manager holds parsed flag values. A nil Manager reports every flag disabled.
type Manager struct {
	flags map[string]string
}

// NewManager parses raw. Malformed entries are skipped.
func NewManager(raw string) *Manager {
	flags := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key != "" && value != "" {
			flags[key] = value
		}
	}
	return &Manager{flags: flags}
}

// Enabled returns whether name is on for userID. Values may be on/true/1,
// off/false/0 or a percentage rollout such as 25%, which is deterministic per
// user and never enabled for the zero user.
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, ok := percentage(value)
	switch {
	case !ok || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < pct
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func percentage(value string) (int, bool) {
	raw, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0, false
	}
	pct, err := strconv.Atoi(raw)
	return pct, err == nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
