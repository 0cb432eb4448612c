package auth

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrEmptyName = errors.New("display name is required")

// IdentityFor maps a display name to a stable identity (a name-based UUID in
// the DNS namespace). Two people choosing the same name share one identity.
// The name is hashed exactly as entered so identities stay compatible with
// existing databases; only blank names are rejected.
func IdentityFor(displayName string) (string, error) {
	if strings.TrimSpace(displayName) == "" {
		return "", ErrEmptyName
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(displayName)).String(), nil
}
