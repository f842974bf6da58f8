package enrich

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// The supplement endpoint's accepted identifier combinations are
// reverse-engineered, observed behavior. The table is versioned and kept as
// data, deliberately not collapsed into a single canonical request shape.
//
//go:embed fallbacks.yaml
var fallbackTableRaw []byte

type fallbackAttempt struct {
	Use []string `yaml:"use"`
}

type fallbackTable struct {
	Version  int               `yaml:"version"`
	Locales  []string          `yaml:"locales"`
	Attempts []fallbackAttempt `yaml:"attempts"`
}

var fallbacks = mustLoadFallbackTable()

func mustLoadFallbackTable() fallbackTable {
	var t fallbackTable
	if err := yaml.Unmarshal(fallbackTableRaw, &t); err != nil {
		panic(fmt.Sprintf("enrich: invalid fallback table: %v", err))
	}
	if len(t.Attempts) == 0 || len(t.Locales) == 0 {
		panic("enrich: fallback table must list attempts and locales")
	}
	return t
}

// identifiers resolves one attempt row against a match's known ids.
// Returns ok=false when the row needs an id the match does not have.
func (a fallbackAttempt) identifiers(id, extendedID, leagueID string) (gid, ecid, lid string, ok bool) {
	for _, field := range a.Use {
		switch field {
		case "gid":
			if id == "" {
				return "", "", "", false
			}
			gid = id
		case "ecid":
			if extendedID == "" {
				return "", "", "", false
			}
			ecid = extendedID
		case "lid":
			if leagueID == "" {
				return "", "", "", false
			}
			lid = leagueID
		}
	}
	return gid, ecid, lid, gid != "" || ecid != "" || lid != ""
}
