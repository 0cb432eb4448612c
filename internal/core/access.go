package core

import "errors"

// Shown instead of the contact form when the access code is not accepted.
const (
	UpsellMessage = "Diese Funktion ist Teil des Happiness-Pakets (5,59 €/Monat)."
	UpsellNote    = "Freischaltung bald verfügbar – dann kannst du direkt mit Anbietern chatten. ❤️"
)

var ErrAccessDenied = errors.New("access code does not unlock this feature")

// AccessGate checks access codes against a fixed allow-list. There is no
// expiry and no payment verification behind it.
type AccessGate struct {
	codes map[string]struct{}
}

func NewAccessGate(codes []string) *AccessGate {
	g := &AccessGate{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if c != "" {
			g.codes[c] = struct{}{}
		}
	}
	return g
}

func (g *AccessGate) Allows(code string) bool {
	if code == "" {
		return false
	}
	_, ok := g.codes[code]
	return ok
}
