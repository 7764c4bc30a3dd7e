package domain

// MostAuthoritative selects the single authoritative subscription among all
// records sharing an owner. At most one subscription per owner should be
// active-equivalent; when races leave more than one record behind, this
// deterministic total order picks the winner for authorization and
// reconciliation alike:
//
//  1. an active-equivalent record beats a non-active-equivalent one,
//  2. between two active-equivalent records the earlier-created wins
//     (the oldest continuous subscription is authoritative),
//  3. between two non-active-equivalent records the more recently
//     updated wins.
//
// Identifier comparison breaks exact timestamp ties so the order stays total
// regardless of input order.
func MostAuthoritative(subs []Subscription) *Subscription {
	var winner *Subscription
	for i := range subs {
		candidate := &subs[i]
		if winner == nil || beats(candidate, winner) {
			winner = candidate
		}
	}
	return winner
}

// beats reports whether a is strictly more authoritative than b.
func beats(a, b *Subscription) bool {
	aActive, bActive := a.ActiveEquivalent(), b.ActiveEquivalent()
	if aActive != bActive {
		return aActive
	}

	if aActive {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}
