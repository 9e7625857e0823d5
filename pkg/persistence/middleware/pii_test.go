package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/lantern/pkg/adapters/memory"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/aretw0/lantern/pkg/journey"
	"github.com/aretw0/lantern/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_MasksOnLoad(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()

	_, err := journey.NewStore(underlying).Dispatch(ctx,
		domain.SetIdentity{Name: domain.Ptr("Mei")},
		domain.AddWishes{Wishes: []domain.Wish{{ID: "1", Text: "Peace"}}},
	)
	require.NoError(t, err)

	mw, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	require.NoError(t, err)
	redacted := mw(underlying)

	data, err := redacted.Load(ctx, journey.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"birthdate": null,
		"zodiac": null,
		"element": null,
		"wishes": [{"id": "1", "wish": "Peace"}],
		"userData": {"name": "***", "email": null}
	}`, string(data))

	// The stored snapshot is untouched.
	raw, err := underlying.Load(ctx, journey.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Mei"`)
}

func TestPIIMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewPIIMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()

	enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	pii, err := middleware.NewPIIMiddleware([]string{"^secret$"})
	require.NoError(t, err)

	store := middleware.Chain(underlying, pii, enc)
	require.NoError(t, store.Save(ctx, "k", []byte(`{"secret":"x","open":"y"}`)))

	data, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"secret":"***","open":"y"}`, string(data))
}
