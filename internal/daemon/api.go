package daemon

import (
	"strconv"
	"strings"

	"jotter/internal/logging"
)

type API struct {
	Version  string
	Notes    *NoteService
	Auth     *AuthService
	Issuer   *TokenIssuer
	Logger   logging.Logger

	// AuthPerMinute caps sign-in and sign-up attempts per client address.
	AuthPerMinute int
	CORSOrigins   []string
	// TrustedProxies are CIDRs or addresses whose X-Forwarded-For and
	// X-Real-IP headers name the client. Everyone else is keyed by peer.
	TrustedProxies []string
}

// parseArchived reads the optional archived query value. Anything that is
// not a recognizable boolean means no filter.
func parseArchived(raw string) *bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}
