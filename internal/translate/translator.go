package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/normalizer"
	"go.uber.org/zap"
)

// FailurePrefix tags a per-string translation failure. A failed batch marks
// every string in it instead of aborting the run.
const FailurePrefix = "[TRANSLATION_FAILED"

// Client calls the batch translation service. The service imposes two hard
// limits per request: a maximum segment count and a maximum cumulative byte
// size; chunkSegmentsAndBytes honors both.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	target      string
	maxSegments int
	maxBytes    int
	logger      *zap.Logger
}

func NewClient(cfg config.TranslateCfg, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.RequestTimeout()}
	}
	return &Client{
		httpClient:  httpClient,
		endpoint:    cfg.Endpoint,
		apiKey:      apiKey,
		target:      cfg.Target,
		maxSegments: cfg.MaxSegments,
		maxBytes:    cfg.MaxBytes,
		logger:      logger,
	}
}

// TranslateAll fills the Translated field of every row. Only native-script
// addresses are sent over the wire; Latin-script rows carry their address
// text through unchanged. Batch failures surface as tagged markers on the
// affected rows and never block other batches.
func (c *Client) TranslateAll(ctx context.Context, rows []*models.UniqueAddress) {
	var candidates []string
	for _, row := range rows {
		if normalizer.IsNonEnglish(row.Address) {
			candidates = append(candidates, row.Address)
		}
	}

	mapping := make(map[string]string, len(candidates))
	for _, batch := range chunkSegmentsAndBytes(candidates, c.maxSegments, c.maxBytes) {
		translated := c.translateBatch(ctx, batch)
		for i, original := range batch {
			mapping[original] = translated[i]
		}
	}

	for _, row := range rows {
		if t, ok := mapping[row.Address]; ok {
			row.Translated = t
		} else {
			row.Translated = row.Address
		}
	}

	c.logger.Info("translated addresses",
		zap.Int("total", len(rows)),
		zap.Int("sent", len(candidates)))
}

// translateBatch translates one batch, returning a failure marker per string
// when the request fails.
func (c *Client) translateBatch(ctx context.Context, batch []string) []string {
	translated, err := c.request(ctx, batch)
	if err != nil {
		c.logger.Warn("translation batch failed",
			zap.Int("segments", len(batch)), zap.Error(err))
		markers := make([]string, len(batch))
		for i := range batch {
			markers[i] = fmt.Sprintf("%s: %v]", FailurePrefix, err)
		}
		return markers
	}
	return translated
}

type translateRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

func (c *Client) request(ctx context.Context, batch []string) ([]string, error) {
	body, err := json.Marshal(translateRequest{Q: batch, Target: c.target, Format: "text"})
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}
	if len(parsed.Data.Translations) != len(batch) {
		return nil, fmt.Errorf("translation count mismatch: sent %d, got %d",
			len(batch), len(parsed.Data.Translations))
	}

	out := make([]string, len(batch))
	for i, t := range parsed.Data.Translations {
		out[i] = t.TranslatedText
	}
	return out, nil
}

// chunkSegmentsAndBytes splits strings into batches respecting both service
// limits. A string that alone exceeds the byte limit travels as a singleton
// batch rather than being dropped.
func chunkSegmentsAndBytes(strings []string, maxSegments, maxBytes int) [][]string {
	var batches [][]string
	var batch []string
	size := 0

	for _, s := range strings {
		encoded, _ := json.Marshal(s)
		n := len(encoded)
		if n > maxBytes {
			batches = append(batches, []string{s})
			continue
		}
		if len(batch) >= maxSegments || size+n > maxBytes {
			batches = append(batches, batch)
			batch = []string{s}
			size = n
		} else {
			batch = append(batch, s)
			size += n
		}
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches
}
