package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/raine/produce-shelf-life/internal/produce"
)

const predictPath = "/v1/projects/{project}/locations/{location}/endpoints/{endpoint}:predict"

// EndpointConfig identifies a managed prediction endpoint.
type EndpointConfig struct {
	BaseURL     string // Defaults to the regional aiplatform host for Location
	Project     string
	Location    string
	EndpointID  string
	AccessToken string
	Timeout     time.Duration
}

type predictInstance struct {
	Content string `json:"content"`
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters map[string]any    `json:"parameters"`
}

type predictResponse struct {
	Predictions     [][]RawAnnotation `json:"predictions"`
	DeployedModelID string            `json:"deployedModelId"`
}

// EndpointPredictor calls a deployed vision model through its REST predict
// method. The model is expected to return annotation lists of
// {displayName, text} pairs.
type EndpointPredictor struct {
	httpClient *resty.Client
	cfg        EndpointConfig
}

func NewEndpointPredictor(cfg EndpointConfig) (*EndpointPredictor, error) {
	if cfg.Project == "" || cfg.EndpointID == "" {
		return nil, fmt.Errorf("prediction endpoint project and id are required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("prediction endpoint access token is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us-central1"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json")

	return &EndpointPredictor{httpClient: httpClient, cfg: cfg}, nil
}

func (p *EndpointPredictor) Name() string {
	return "endpoint:" + p.cfg.EndpointID
}

// Predict implements Predictor.
func (p *EndpointPredictor) Predict(ctx context.Context, pngImage []byte) ([]produce.Annotation, error) {
	if len(pngImage) == 0 {
		return nil, fmt.Errorf("no image provided")
	}

	result := &predictResponse{}
	_, err := handleError(p.httpClient.R().
		SetContext(ctx).
		SetBody(predictRequest{
			Instances:  []predictInstance{{Content: base64.StdEncoding.EncodeToString(pngImage)}},
			Parameters: map[string]any{},
		}).
		SetResult(result).
		SetPathParams(map[string]string{
			"project":  p.cfg.Project,
			"location": p.cfg.Location,
			"endpoint": p.cfg.EndpointID,
		}).
		Post(predictPath))
	if err != nil {
		return nil, fmt.Errorf("prediction request failed: %w", err)
	}

	var raw []RawAnnotation
	for _, prediction := range result.Predictions {
		raw = append(raw, prediction...)
	}
	annotations := FilterKnown(raw)

	log.Info().
		Str("endpoint", p.cfg.EndpointID).
		Str("deployedModelId", result.DeployedModelID).
		Int("imageBytes", len(pngImage)).
		Int("rawAnnotations", len(raw)).
		Int("annotations", len(annotations)).
		Msg("prediction endpoint call")

	return annotations, nil
}

// handleError turns failing responses (>399 status code) into errors; resty
// itself only reports transport failures.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}
