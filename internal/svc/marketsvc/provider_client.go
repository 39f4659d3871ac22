package marketsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mkrupp/cryptotracker/internal/domain"
	context_ "github.com/mkrupp/cryptotracker/internal/infra/context"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
	http_ "github.com/mkrupp/cryptotracker/internal/infra/transport/http"
)

const (
	providerCMC       = "coinmarketcap"
	providerCoinGecko = "coingecko"

	// maxPayloadSize bounds provider responses; the full coin list is a few MB.
	maxPayloadSize = 32 << 20
)

var errInvalidPayload = errors.New("payload is not valid JSON")

// ProviderClient performs GET requests against one market data provider and
// returns the raw JSON body.
type ProviderClient struct {
	name       string
	baseURL    string
	header     http.Header
	httpClient *http.Client
	log        logging.Logger
}

// NewProviderClient creates a ProviderClient for the provider at baseURL.
// header is added to every request. If httpClient is nil, http.DefaultClient will be used.
func NewProviderClient(name, baseURL string, header http.Header, httpClient *http.Client) *ProviderClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if header == nil {
		header = make(http.Header)
	}

	return &ProviderClient{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		header:     header,
		httpClient: httpClient,
		log:        logging.GetLogger("svc.marketsvc.provider_client").With("provider", name),
	}
}

// Get requests path with query and returns the response body.
// Non-2xx responses, transport failures and non-JSON bodies are reported as
// *domain.UpstreamError.
func (pc *ProviderClient) Get(ctx context.Context, path string, query url.Values) (_ []byte, err error) {
	log := pc.log.With("path", path)

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "upstream request failed", "error", err)
		}
	}()

	target := pc.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: pc.name, Path: path, Err: fmt.Errorf("new request: %w", err)}
	}

	for name, values := range pc.header {
		req.Header[name] = values
	}

	req.Header.Set("Accept", "application/json")

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(http_.TraceIDHeader, traceID)
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: pc.name, Path: path, Err: fmt.Errorf("get: %w", err)}
	}
	defer resp.Body.Close()

	log = log.With("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadSize))

		return nil, &domain.UpstreamError{Provider: pc.name, Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, &domain.UpstreamError{Provider: pc.name, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if !json.Valid(body) {
		return nil, &domain.UpstreamError{Provider: pc.name, Path: path, Err: errInvalidPayload}
	}

	log.DebugContext(ctx, "upstream request", "bytes", len(body))

	return body, nil
}
