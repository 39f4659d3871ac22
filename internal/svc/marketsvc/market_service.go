package marketsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mkrupp/cryptotracker/internal/domain"
	"github.com/mkrupp/cryptotracker/internal/infra/cache"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
)

const (
	DefaultListingsLimit = 50
	MaxListingsLimit     = 5000
	DefaultHistoryID     = "bitcoin"
	DefaultHistoryDays   = 7
	MaxHistoryDays       = 3650

	coinListKey = "coins_list"
)

// wellKnownIDs breaks ties when several coins share a ticker symbol.
//
//nolint:gochecknoglobals
var wellKnownIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"usdt": "tether",
	"bnb":  "binancecoin",
	"sol":  "solana",
	"xrp":  "ripple",
	"usdc": "usd-coin",
	"ada":  "cardano",
	"doge": "dogecoin",
	"trx":  "tron",
	"dot":  "polkadot",
	"ltc":  "litecoin",
	"link": "chainlink",
	"avax": "avalanche-2",
}

// MarketService answers market data queries from the response cache, going
// upstream on a miss. Concurrent misses for the same key share one request.
// Failed requests are never cached.
type MarketService struct {
	Config MarketConfig
	Log    logging.Logger

	cmc       *ProviderClient
	coinGecko *ProviderClient
	responses *cache.TTLCache[[]byte]
	coins     *cache.TTLCache[[]domain.Coin]
	group     singleflight.Group
}

// NewMarketService creates a new MarketService. responses is shared with the
// caller so it can be cleared from outside; the coin list gets its own cache.
func NewMarketService(cfg MarketConfig, responses *cache.TTLCache[[]byte]) *MarketService {
	//nolint:exhaustruct
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.UpstreamTimeout) * time.Second,
	}

	cmcHeader := make(http.Header)
	cmcHeader.Set("X-CMC_PRO_API_KEY", cfg.CMCAPIKey)

	return &MarketService{
		Config:    cfg,
		Log:       logging.GetLogger("svc.marketsvc.market_service"),
		cmc:       NewProviderClient(providerCMC, cfg.CMCBaseURL, cmcHeader, httpClient),
		coinGecko: NewProviderClient(providerCoinGecko, cfg.CoinGeckoBaseURL, nil, httpClient),
		responses: responses,
		coins: cache.New[[]domain.Coin](cache.Config{
			TTL:        cfg.CoinListTTL,
			MaxEntries: 1,
		}),
	}
}

// fetch returns the cached body for key or performs the upstream request.
// The shared request is detached from the caller's cancellation so one
// disconnecting client does not fail the others; the client timeout bounds it.
func (s *MarketService) fetch(
	ctx context.Context,
	key string,
	client *ProviderClient,
	path string,
	query url.Values,
) ([]byte, error) {
	log := s.Log.With("cache.key", key)

	if body, ok := s.responses.Get(key); ok {
		log.DebugContext(ctx, "cache hit")

		return body, nil
	}

	result, err, shared := s.group.Do(key, func() (any, error) {
		if body, ok := s.responses.Get(key); ok {
			return body, nil
		}

		body, err := client.Get(context.WithoutCancel(ctx), path, query)
		if err != nil {
			return nil, err
		}

		s.responses.Set(key, body)

		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}

	log.DebugContext(ctx, "cache miss", "shared", shared)

	//nolint:forcetypeassert
	return result.([]byte), nil
}

// Listings returns the top limit assets. Zero means DefaultListingsLimit.
func (s *MarketService) Listings(ctx context.Context, limit int) ([]byte, error) {
	if limit == 0 {
		limit = DefaultListingsLimit
	}

	if limit < 1 || limit > MaxListingsLimit {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLimit, limit)
	}

	return s.fetch(ctx, "listings_"+strconv.Itoa(limit), s.cmc, "/cryptocurrency/listings/latest", url.Values{
		"limit":   {strconv.Itoa(limit)},
		"convert": {"USD"},
	})
}

// Quote returns the latest USD quote for one or more comma separated symbols.
func (s *MarketService) Quote(ctx context.Context, symbol string) ([]byte, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, domain.ErrSymbolRequired
	}

	return s.fetch(ctx, "quotes_"+symbol, s.cmc, "/cryptocurrency/quotes/latest", url.Values{
		"symbol":  {symbol},
		"convert": {"USD"},
	})
}

// Info returns static metadata for one or more comma separated symbols.
func (s *MarketService) Info(ctx context.Context, symbol string) ([]byte, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, domain.ErrSymbolRequired
	}

	return s.fetch(ctx, "info_"+symbol, s.cmc, "/cryptocurrency/info", url.Values{
		"symbol": {symbol},
	})
}

// History returns the USD price series of the coin id over the last days.
// Empty id and zero days fall back to DefaultHistoryID and DefaultHistoryDays.
func (s *MarketService) History(ctx context.Context, id string, days int) ([]byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultHistoryID
	}

	if days == 0 {
		days = DefaultHistoryDays
	}

	if days < 1 || days > MaxHistoryDays {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidDays, days)
	}

	return s.fetch(ctx, "history_"+id+"_"+strconv.Itoa(days), s.coinGecko, "/coins/"+url.PathEscape(id)+"/market_chart", url.Values{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(days)},
	})
}

// ResolveID maps a ticker symbol to the history provider's coin id.
// Returns domain.ErrSymbolNotFound if no coin carries the symbol.
func (s *MarketService) ResolveID(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", domain.ErrSymbolRequired
	}

	coins, err := s.coinList(ctx)
	if err != nil {
		return "", fmt.Errorf("coin list: %w", err)
	}

	id, ok := resolve(coins, symbol)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrSymbolNotFound, symbol)
	}

	return id, nil
}

func resolve(coins []domain.Coin, symbol string) (string, bool) {
	var (
		first string
		found bool
	)

	preferred := wellKnownIDs[symbol]

	for _, coin := range coins {
		if !strings.EqualFold(coin.Symbol, symbol) {
			continue
		}

		if preferred != "" && coin.ID == preferred {
			return coin.ID, true
		}

		if !found {
			first, found = coin.ID, true
		}
	}

	return first, found
}

func (s *MarketService) coinList(ctx context.Context) ([]domain.Coin, error) {
	if coins, ok := s.coins.Get(coinListKey); ok {
		return coins, nil
	}

	result, err, _ := s.group.Do(coinListKey, func() (any, error) {
		if coins, ok := s.coins.Get(coinListKey); ok {
			return coins, nil
		}

		body, err := s.coinGecko.Get(context.WithoutCancel(ctx), "/coins/list", nil)
		if err != nil {
			return nil, err
		}

		var coins []domain.Coin
		if err := json.Unmarshal(body, &coins); err != nil {
			return nil, &domain.UpstreamError{Provider: providerCoinGecko, Path: "/coins/list", Err: err}
		}

		s.coins.Set(coinListKey, coins)
		s.Log.DebugContext(ctx, "coin list loaded", "coins", len(coins))

		return coins, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch coin list: %w", err)
	}

	//nolint:forcetypeassert
	return result.([]domain.Coin), nil
}

// ClearCache drops every cached response and the coin list.
func (s *MarketService) ClearCache(ctx context.Context) {
	s.responses.Clear()
	s.coins.Clear()

	s.Log.InfoContext(ctx, "cache cleared")
}
