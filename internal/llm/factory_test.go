package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raine/produce-shelf-life/config"
)

func TestNewPredictorEndpoint(t *testing.T) {
	p, err := NewPredictor(context.Background(), &config.Config{
		Predictor:         config.PredictorEndpoint,
		VertexProject:     "proj",
		VertexEndpointID:  "77",
		VertexAccessToken: "token",
	})
	require.NoError(t, err)
	assert.Equal(t, "endpoint:77", p.Name())
}

func TestNewPredictorErrors(t *testing.T) {
	p, err := NewPredictor(context.Background(), &config.Config{Predictor: "nope"})
	assert.ErrorContains(t, err, "unknown predictor")
	assert.Nil(t, p)

	p, err = NewPredictor(context.Background(), &config.Config{Predictor: config.PredictorGemini})
	assert.ErrorContains(t, err, "API key")
	assert.True(t, p == nil, "interface must be nil on error")

	p, err = NewPredictor(context.Background(), &config.Config{Predictor: config.PredictorEndpoint, VertexProject: "p"})
	assert.Error(t, err)
	assert.True(t, p == nil, "interface must be nil on error")
}
