package protocol

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"time"

	"odds-sync-service/internal/domain"
)

// Protocol constants. The operation parameter selects the server-side
// handler; everything goes to the one transform endpoint.
const (
	EndpointPath = "/transform.php"

	opLogin      = "chk_login"
	opListing    = "get_game_list"
	opSupplement = "get_game_more"

	protocolVersion = "2024-10-18-frontend_1"
	sportType       = "ft"

	// DefaultLocale is the locale the upstream is most consistent under.
	DefaultLocale = "zh-cn"
)

// categoryParams maps a category to the (showtype, rtype) pair the listing
// operation expects. The pair is a fixed lookup; the server rejects
// mismatched combinations.
var categoryParams = map[domain.Category]struct {
	showType string
	rType    string
}{
	domain.CategoryLive:  {"live", "rb"},
	domain.CategoryToday: {"today", "r"},
	domain.CategoryEarly: {"early", "r"},
}

// BuildLoginRequest assembles the login form. The user agent is transmitted
// base64-encoded; the fingerprint only has to satisfy the server's shape
// check, it is not server-issued.
func BuildLoginRequest(username, password, fingerprint, userAgent, locale string) url.Values {
	if locale == "" {
		locale = DefaultLocale
	}
	return url.Values{
		"p":         {opLogin},
		"ver":       {protocolVersion},
		"langx":     {locale},
		"username":  {username},
		"password":  {password},
		"app":       {"N"},
		"auto":      {"CDDFD"},
		"blackbox":  {fingerprint},
		"userAgent": {base64.StdEncoding.EncodeToString([]byte(userAgent))},
	}
}

// BuildListingRequest assembles the primary listing form for one category.
// The ts field is a cache buster derived from now.
func BuildListingRequest(uid string, category domain.Category, now time.Time) url.Values {
	p := categoryParams[category]
	return url.Values{
		"p":            {opListing},
		"uid":          {uid},
		"ver":          {protocolVersion},
		"langx":        {DefaultLocale},
		"gtype":        {sportType},
		"showtype":     {p.showType},
		"rtype":        {p.rType},
		"ltype":        {"3"},
		"sorttype":     {"L"},
		"specialClick": {""},
		"isFantasy":    {"N"},
		"ts":           {strconv.FormatInt(now.UnixMilli(), 10)},
	}
}

// BuildSupplementRequest assembles the per-match market-detail form. Which
// of gid/ecid/lid are populated is decided by the caller's fallback table;
// empty identifiers are omitted from the payload.
func BuildSupplementRequest(uid string, category domain.Category, gid, ecid, lid, locale string) url.Values {
	if locale == "" {
		locale = DefaultLocale
	}
	p := categoryParams[category]
	v := url.Values{
		"p":        {opSupplement},
		"uid":      {uid},
		"ver":      {protocolVersion},
		"langx":    {locale},
		"gtype":    {sportType},
		"showtype": {p.showType},
		"ltype":    {"3"},
		"from":     {"game_more"},
		"filter":   {"All"},
	}
	if gid != "" {
		v.Set("gid", gid)
	}
	if ecid != "" {
		v.Set("ecid", ecid)
	}
	if lid != "" {
		v.Set("lid", lid)
	}
	return v
}
