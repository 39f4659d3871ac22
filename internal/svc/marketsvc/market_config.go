package marketsvc

// MarketConfig contains configuration parameters for the market data providers.
type MarketConfig struct {
	// CMCBaseURL is the base URL of the listings/quotes/info provider
	CMCBaseURL string `env:"CMC_BASE_URL" default:"https://pro-api.coinmarketcap.com/v1"`

	// CMCAPIKey is sent as X-CMC_PRO_API_KEY with every listings/quotes/info request
	CMCAPIKey string `env:"CMC_API_KEY" envAlias:"CMC_API_KEY" default:""`

	// CoinGeckoBaseURL is the base URL of the price history provider
	CoinGeckoBaseURL string `env:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`

	// UpstreamTimeout bounds each provider request in seconds
	UpstreamTimeout int64 `env:"UPSTREAM_TIMEOUT" default:"10"`

	// CoinListTTL is how long the symbol->id list is kept, in seconds
	CoinListTTL int64 `env:"COIN_LIST_TTL" default:"86400"` // 1d
}
