package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/external"
	"go.uber.org/zap"
)

// Provider is one external geocoding or parsing service. Geocode issues a
// single lookup and maps the provider's response schema into the common
// component set; an empty result with a nil error means the provider had no
// answer for the address.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, address string) (models.Components, error)
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// Nominatim queries a local reverse-geocoding instance. It is the most
// reliable provider for native-script addresses.
type Nominatim struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

func NewNominatim(endpoint string, client *http.Client, logger *zap.Logger) *Nominatim {
	return &Nominatim{client: client, endpoint: endpoint, logger: logger}
}

func (n *Nominatim) Name() string { return models.ProviderNominatim }

func (n *Nominatim) Geocode(ctx context.Context, address string) (models.Components, error) {
	params := url.Values{
		"q":              {address},
		"format":         {"json"},
		"addressdetails": {"1"},
		"accept-language": {"en"},
		"limit":          {"1"},
	}
	var results []nominatimResult
	if _, err := getJSON(ctx, n.client, n.endpoint, params, &results); err != nil {
		return models.Components{}, err
	}
	if len(results) == 0 {
		return models.Components{}, nil
	}
	return parseNominatim(results[0]), nil
}

// Yandex queries the Yandex Geocoder API restricted to a bounding box around
// Armenia, Georgia and Azerbaijan. It retries rate-limited requests with a
// server-specified delay or a multiplicative backoff, bounded by maxAttempts.
type Yandex struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	maxAttempts int
	backoffBase time.Duration
	logger      *zap.Logger
}

// Covers Armenia with margins into Georgia and Azerbaijan.
const yandexBBox = "43.447,38.841~46.634,41.300"

func NewYandex(endpoint, apiKey string, maxAttempts int, backoffBase time.Duration, client *http.Client, logger *zap.Logger) *Yandex {
	return &Yandex{
		client:      client,
		endpoint:    endpoint,
		apiKey:      apiKey,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		logger:      logger,
	}
}

func (y *Yandex) Name() string { return models.ProviderYandex }

func (y *Yandex) Geocode(ctx context.Context, address string) (models.Components, error) {
	params := url.Values{
		"apikey":  {y.apiKey},
		"geocode": {address},
		"format":  {"json"},
		"lang":    {"en_US"},
		"bbox":    {yandexBBox},
		"rspn":    {"1"},
		"results": {"1"},
	}

	var lastErr error
	for attempt := 1; attempt <= y.maxAttempts; attempt++ {
		var parsed yandexResponse
		status, retryAfter, err := y.get(ctx, params, &parsed)
		if err == nil {
			return parseYandex(parsed), nil
		}
		lastErr = err
		if status != http.StatusTooManyRequests {
			return models.Components{}, err
		}

		// Server-specified delay wins over the computed backoff.
		delay := y.backoffBase * time.Duration(attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		y.logger.Warn("yandex rate limited, backing off",
			zap.Int("attempt", attempt), zap.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return models.Components{}, ctx.Err()
		}
	}
	return models.Components{}, fmt.Errorf("rate limited after %d attempts: %w", y.maxAttempts, lastErr)
}

func (y *Yandex) get(ctx context.Context, params url.Values, out any) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		var retryAfter time.Duration
		if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		return resp.StatusCode, retryAfter, fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, 0, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, 0, nil
}

// Azure queries the Azure Maps search API with the country set restricted to
// Armenia, Georgia and Azerbaijan. It is the Latin-oriented provider.
type Azure struct {
	client   *http.Client
	endpoint string
	apiKey   string
	logger   *zap.Logger
}

func NewAzure(endpoint, apiKey string, client *http.Client, logger *zap.Logger) *Azure {
	return &Azure{client: client, endpoint: endpoint, apiKey: apiKey, logger: logger}
}

func (a *Azure) Name() string { return models.ProviderAzure }

func (a *Azure) Geocode(ctx context.Context, address string) (models.Components, error) {
	params := url.Values{
		"api-version":      {"1.0"},
		"subscription-key": {a.apiKey},
		"query":            {address},
		"countrySet":       {"AM,GE,AZ"},
		"limit":            {"1"},
	}
	var parsed azureResponse
	if _, err := getJSON(ctx, a.client, a.endpoint, params, &parsed); err != nil {
		return models.Components{}, err
	}
	if len(parsed.Results) == 0 {
		return models.Components{}, nil
	}
	return parseAzure(parsed.Results[0]), nil
}

// Libpostal queries a statistical address-parser service. It carries no
// knowledge of real places, so it runs last in every chain as a structural
// fallback.
type Libpostal struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
}

func NewLibpostal(endpoint string, client *http.Client, logger *zap.Logger) *Libpostal {
	return &Libpostal{client: client, endpoint: endpoint, logger: logger}
}

func (l *Libpostal) Name() string { return models.ProviderLibpostal }

func (l *Libpostal) Geocode(ctx context.Context, address string) (models.Components, error) {
	params := url.Values{"address": {address}}

	// The service answers [[value, label], ...] pairs.
	var pairs [][2]string
	if _, err := getJSON(ctx, l.client, l.endpoint, params, &pairs); err != nil {
		// Parse in-process when the service is unreachable and the
		// libpostal binding was compiled in.
		if external.Available {
			if labeled := external.Extract(address); len(labeled) > 0 {
				l.logger.Debug("libpostal service unreachable, parsed in-process",
					zap.String("address", address))
				return parseLibpostal(labeled), nil
			}
		}
		return models.Components{}, err
	}
	if len(pairs) == 0 {
		return models.Components{}, nil
	}

	labeled := make(map[string]string, len(pairs))
	for _, p := range pairs {
		labeled[p[1]] = p[0]
	}
	return parseLibpostal(labeled), nil
}
