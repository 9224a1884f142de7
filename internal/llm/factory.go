package llm

import (
	"context"
	"fmt"

	"github.com/raine/produce-shelf-life/config"
)

// NewPredictor builds the predictor selected by cfg.Predictor.
func NewPredictor(ctx context.Context, cfg *config.Config) (Predictor, error) {
	switch cfg.Predictor {
	case config.PredictorGemini:
		p, err := NewGeminiPredictor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.PredictorEndpoint:
		p, err := NewEndpointPredictor(EndpointConfig{
			BaseURL:     cfg.VertexBaseURL,
			Project:     cfg.VertexProject,
			Location:    cfg.VertexLocation,
			EndpointID:  cfg.VertexEndpointID,
			AccessToken: cfg.VertexAccessToken,
			Timeout:     cfg.InferenceTimeout,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown predictor %q", cfg.Predictor)
	}
}
