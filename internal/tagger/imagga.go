package tagger

import (
	"context"
	"io"
	"time"

	"github.com/drios/memedb/internal/domain"
	"github.com/go-resty/resty/v2"
)

// ImaggaConfig holds configuration for the Imagga tagging API client.
type ImaggaConfig struct {
	Endpoint  string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// ImaggaClient implements Classifier against the Imagga /v2/tags endpoint.
type ImaggaClient struct {
	client   *resty.Client
	endpoint string
}

// imaggaResponse mirrors the /v2/tags JSON body: a result.tags list where
// each entry carries a confidence and a per-language tag map.
type imaggaResponse struct {
	Result struct {
		Tags []struct {
			Confidence float64 `json:"confidence"`
			Tag        struct {
				En string `json:"en"`
			} `json:"tag"`
		} `json:"tags"`
	} `json:"result"`
	Status struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"status"`
}

// NewImaggaClient creates a new Imagga API client.
// Parameters:
//   - cfg: endpoint, credentials, and request timeout.
// Returns:
//   - *ImaggaClient: initialized client.
func NewImaggaClient(cfg *ImaggaConfig) *ImaggaClient {
	client := resty.New()
	client.SetBasicAuth(cfg.APIKey, cfg.APISecret)
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.imagga.com/v2/tags"
	}

	return &ImaggaClient{
		client:   client,
		endpoint: endpoint,
	}
}

// Classify submits an image as a multipart POST and returns the raw
// (label, confidence) pairs. Any non-2xx response becomes a tagging error
// carrying the provider's response body; transport failures are converted
// the same way rather than propagated raw.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filename: name reported in the multipart part.
//   - image: image bytes.
// Returns:
//   - []Prediction: classifier labels with 0-100 confidence scores.
//   - error: tagging-kind error on any failure.
func (c *ImaggaClient) Classify(ctx context.Context, filename string, image io.Reader) ([]Prediction, error) {
	var parsed imaggaResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("image", filename, image).
		SetResult(&parsed).
		Post(c.endpoint)
	if err != nil {
		return nil, domain.NewTaggingError("failed to call tagging API", "", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, domain.NewTaggingError("tagging API returned non-success status", string(resp.Body()), nil)
	}

	predictions := make([]Prediction, 0, len(parsed.Result.Tags))
	for _, t := range parsed.Result.Tags {
		predictions = append(predictions, Prediction{
			Label:      t.Tag.En,
			Confidence: t.Confidence,
		})
	}
	return predictions, nil
}
