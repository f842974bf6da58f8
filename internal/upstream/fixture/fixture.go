// Package fixture serves canned protocol responses for local development
// and tests, without touching the real upstream.
package fixture

import (
	"context"
	"embed"
	"fmt"
	"net/url"
)

//go:embed data/*.xml
var data embed.FS

// Doer replays embedded responses keyed by operation and showtype.
type Doer struct{}

// New creates a fixture transport.
func New() *Doer {
	return &Doer{}
}

// Do returns the canned response for the requested operation.
func (d *Doer) Do(_ context.Context, form url.Values) ([]byte, error) {
	var name string
	switch op := form.Get("p"); op {
	case "chk_login":
		name = "login.xml"
	case "get_game_list":
		name = fmt.Sprintf("listing_%s.xml", form.Get("showtype"))
	case "get_game_more":
		name = "supplement.xml"
	default:
		return nil, fmt.Errorf("fixture: unknown operation %q", op)
	}
	return data.ReadFile("data/" + name)
}
