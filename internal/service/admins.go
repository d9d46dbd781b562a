package service

import "strings"

// adminSet is the allow-list of wallets permitted to resolve markets.
type adminSet map[string]struct{}

func newAdminSet(wallets []string) adminSet {
	set := make(adminSet, len(wallets))
	for _, w := range wallets {
		if w = strings.TrimSpace(w); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func (s adminSet) contains(wallet string) bool {
	_, ok := s[wallet]
	return ok
}
