package llm

import (
	"context"
	"encoding/hex"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/raine/produce-shelf-life/internal/produce"
)

// AnnotationStore persists prediction results by image fingerprint.
type AnnotationStore interface {
	GetAnnotations(imageHash string) ([]produce.Annotation, error)
	SetAnnotations(imageHash string, annotations []produce.Annotation) error
}

// CachedPredictor wraps a Predictor so that analyzing the same image twice
// costs one model call.
type CachedPredictor struct {
	inner Predictor
	store AnnotationStore
}

func NewCachedPredictor(inner Predictor, store AnnotationStore) *CachedPredictor {
	return &CachedPredictor{inner: inner, store: store}
}

// HashImage fingerprints image bytes.
func HashImage(img []byte) string {
	sum := blake2b.Sum256(img)
	return hex.EncodeToString(sum[:])
}

func (c *CachedPredictor) Name() string {
	return c.inner.Name()
}

// Predict implements Predictor. Store errors are logged and otherwise ignored.
func (c *CachedPredictor) Predict(ctx context.Context, pngImage []byte) ([]produce.Annotation, error) {
	hash := HashImage(pngImage)

	if c.store != nil {
		cached, err := c.store.GetAnnotations(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check annotation cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("annotation cache hit")
			return cached, nil
		}
	}

	annotations, err := c.inner.Predict(ctx, pngImage)
	if err != nil {
		return nil, err
	}

	if c.store != nil && len(annotations) > 0 {
		if err := c.store.SetAnnotations(hash, annotations); err != nil {
			log.Warn().Err(err).Msg("failed to cache annotations")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached annotations")
		}
	}

	return annotations, nil
}
