package domain

import "strings"

// Favorite links a user to an asset symbol. Symbols are stored upper-case and
// are unique per user.
type Favorite struct {
	ID        int64
	UserID    int64
	Symbol    string
	CreatedAt int64
}

// FavoriteRequest is the body of the add-favorite endpoint.
type FavoriteRequest struct {
	Symbol string `json:"symbol"`
}

// FavoritesResponse lists a user's favorite symbols in insertion order.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// FavoriteRemovedResponse reports whether a delete removed anything.
type FavoriteRemovedResponse struct {
	OK      bool `json:"ok"`
	Removed bool `json:"removed"`
}

// NormalizeSymbol returns the canonical form of a ticker symbol list:
// trimmed, upper-case, comma separated without empty parts.
// "btc, eth,," becomes "BTC,ETH".
func NormalizeSymbol(symbol string) string {
	parts := strings.Split(symbol, ",")
	out := parts[:0]

	for _, part := range parts {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}

	return strings.Join(out, ",")
}
