package token

import "strings"

// Values older frontends persisted verbatim when a token variable was unset.
var junkValues = map[string]struct{}{
	"":          {},
	"undefined": {},
	"null":      {},
}

// BestAccess picks the freshest usable access token from a list of candidate
// sources. Two storage locations can hold an access token (the current key
// and a legacy one), so selection has to be deterministic: malformed values
// and non-access token types are discarded, and of the remainder the one
// with the greatest exp claim wins, earlier candidates winning ties. An
// empty string is returned when no candidate qualifies.
func BestAccess(candidates ...string) string {
	var selected string
	selectedExp := int64(-1)

	for _, candidate := range candidates {
		if _, junk := junkValues[candidate]; junk {
			continue
		}
		if strings.Count(candidate, ".") != 2 {
			continue
		}

		payload := Decode(candidate)
		if payload == nil || !payload.IsAccess() {
			continue
		}

		exp := int64(-1)
		if e, ok := payload.Exp(); ok {
			exp = e
		}
		if exp > selectedExp {
			selectedExp = exp
			selected = candidate
		}
	}

	return selected
}
