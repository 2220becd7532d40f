package domain

// DefaultIPScore is assigned to an address on first sight.
const DefaultIPScore = 2

// DefaultIPNotes is stored with newly seen addresses.
const DefaultIPNotes = "unknown"

// IPScore is the abuse score of one client address. A score of 0 bans it.
type IPScore struct {
	IP    string
	Score int
	Notes string
}

func (s *IPScore) Banned() bool {
	return s.Score <= 0
}
