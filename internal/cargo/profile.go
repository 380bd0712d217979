package cargo

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// CanonicalProfile renders a [profile] table in canonical textual form: the
// table is re-encoded with map keys in sorted order, so formatting and key
// ordering in the source manifest don't affect the result. `lto` keys are
// dropped at every depth; linking the final binary with a different lto
// setting doesn't change the sysroot artifacts cargo produces for it.
//
// Returns "" for a nil or effectively-empty profile.
func CanonicalProfile(profile map[string]interface{}) (string, error) {
	normalized := stripLto(profile)
	if len(normalized) == 0 {
		return "", nil
	}

	var sb strings.Builder
	enc := toml.NewEncoder(&sb)
	if err := enc.Encode(map[string]interface{}{"profile": normalized}); err != nil {
		return "", errors.Wrap(err, "couldn't encode the [profile] section")
	}

	return sb.String(), nil
}

func stripLto(table map[string]interface{}) map[string]interface{} {
	if table == nil {
		return nil
	}

	out := make(map[string]interface{}, len(table))
	for k, v := range table {
		if k == "lto" {
			continue
		}
		if sub, ok := v.(map[string]interface{}); ok {
			if stripped := stripLto(sub); len(stripped) > 0 {
				out[k] = stripped
			}
			continue
		}
		out[k] = v
	}
	return out
}
