package payable

import "strings"

// Reference identifies a payable on the gateway side, e.g. "basket_42".
func Reference(p Payable) string {
	return string(p.Kind()) + "_" + p.ID()
}

// ParseReference splits a reference back into kind and id. Only the first
// "_" separates them, so ids may contain underscores themselves. ok is false
// unless the kind is basket or order and the id is non-empty.
func ParseReference(ref string) (kind Kind, id string, ok bool) {
	prefix, id, found := strings.Cut(ref, "_")
	if !found || id == "" {
		return "", "", false
	}
	switch Kind(prefix) {
	case KindBasket, KindOrder:
		return Kind(prefix), id, true
	}
	return "", "", false
}
