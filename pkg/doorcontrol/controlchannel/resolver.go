package controlchannel

import "strings"

// Resolve maps a caller-supplied target string to exactly one live
// session. Resolution order:
//
//  1. exact match on a registered device ID
//  2. target carries the device ID prefix: strip it and retry exact,
//     then retry as a suffix match against all registered IDs
//  3. target lacks the prefix: retry with the prefix prepended
//
// An exact match always wins over any fuzzy variant. Suffix matches are
// resolved first-match-in-registration-order; if two registered IDs share
// a suffix the result is order-dependent (documented tie-break, carried
// over from the source behavior). On failure the returned error carries
// the full current roster for diagnostics.
func (r *Registry) Resolve(target, prefix string) (Session, error) {
	if sess, ok := r.Lookup(target); ok {
		return sess, nil
	}

	if prefix != "" && strings.HasPrefix(target, prefix) {
		stripped := strings.TrimPrefix(target, prefix)
		if sess, ok := r.Lookup(stripped); ok {
			return sess, nil
		}

		for _, sess := range r.Snapshot() {
			if strings.HasSuffix(sess.DeviceID, stripped) {
				return sess, nil
			}
		}
	}

	if prefix != "" && !strings.HasPrefix(target, prefix) {
		if sess, ok := r.Lookup(prefix + target); ok {
			return sess, nil
		}
	}

	return Session{}, NewTargetNotFoundError(target, r.DeviceIDs())
}
