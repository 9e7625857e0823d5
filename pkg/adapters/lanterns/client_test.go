package lanterns_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/lantern/pkg/adapters/lanterns"
	"github.com/aretw0/lantern/pkg/adapters/lanterns/lanternstest"
	"github.com/aretw0/lantern/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validRequest = domain.LanternRequest{
	Name:       "Mei",
	Email:      "mei@example.com",
	Birthdate:  "2025-02-01",
	AnimalSign: domain.AnimalSnake,
	Element:    domain.ElementWood,
	Message:    "Happy New Year",
}

func TestClient_CreateAndGet(t *testing.T) {
	srv, fake := lanternstest.NewServer("secret")
	defer srv.Close()

	client := lanterns.NewClient(srv.URL+"/", "secret")
	ctx := context.Background()

	rec, err := client.CreateLantern(ctx, validRequest)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, validRequest, rec.LanternRequest)
	assert.Len(t, fake.Lanterns(), 1)

	got, err := client.GetLantern(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestClient_ErrorMapping(t *testing.T) {
	srv, fake := lanternstest.NewServer("secret")
	defer srv.Close()
	ctx := context.Background()

	t.Run("Wrong Key", func(t *testing.T) {
		_, err := lanterns.NewClient(srv.URL, "wrong").CreateLantern(ctx, validRequest)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		var gwErr *domain.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, http.StatusUnauthorized, gwErr.Status)
		assert.Equal(t, "Invalid API Key", gwErr.Detail)
	})

	t.Run("Missing Key Never Calls Out", func(t *testing.T) {
		_, err := lanterns.NewClient("http://127.0.0.1:1", "").CreateLantern(ctx, validRequest)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Rejected", func(t *testing.T) {
		bad := validRequest
		bad.Email = "not-an-email"
		_, err := lanterns.NewClient(srv.URL, "secret").CreateLantern(ctx, bad)
		assert.ErrorIs(t, err, domain.ErrRejected)

		var gwErr *domain.GatewayError
		require.ErrorAs(t, err, &gwErr)
		assert.Equal(t, http.StatusUnprocessableEntity, gwErr.Status)
		assert.Contains(t, gwErr.Detail, "email")
	})

	t.Run("Not Found", func(t *testing.T) {
		_, err := lanterns.NewClient(srv.URL, "secret").GetLantern(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrLanternNotFound)
	})

	t.Run("Server Error", func(t *testing.T) {
		fake.FailWith(http.StatusBadGateway)
		defer fake.FailWith(0)

		_, err := lanterns.NewClient(srv.URL, "secret").CreateLantern(ctx, validRequest)
		assert.ErrorIs(t, err, domain.ErrUnreachable)
	})

	t.Run("Transport Failure", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		_, err := lanterns.NewClient(dead.URL, "secret").CreateLantern(ctx, validRequest)
		assert.ErrorIs(t, err, domain.ErrUnreachable)
	})

	t.Run("Timeout", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer slow.Close()

		_, err := lanterns.NewClient(slow.URL, "secret", lanterns.WithTimeout(50*time.Millisecond)).CreateLantern(ctx, validRequest)
		assert.ErrorIs(t, err, domain.ErrUnreachable)
	})
}

func TestClient_DetailFormats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`))
	}))
	defer srv.Close()

	_, err := lanterns.NewClient(srv.URL, "secret").CreateLantern(context.Background(), validRequest)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.GatewayRejected, gwErr.Kind)
	assert.Equal(t, "email: value is not a valid email address", gwErr.Detail)
}

func TestClient_NumericIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lanterns/", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get(lanterns.APIKeyHeader))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"name":"Mei","email":"","birthdate":"","animal_sign":"Snake","element":"Wood","message":"hi"}`))
	}))
	defer srv.Close()

	rec, err := lanterns.NewClient(srv.URL, "secret").CreateLantern(context.Background(), validRequest)
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	assert.Equal(t, "hi", rec.Message)
}

func TestClient_UnreadableSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>created</html>`))
	}))
	defer srv.Close()
	client := lanterns.NewClient(srv.URL, "secret")
	ctx := context.Background()

	_, err := client.CreateLantern(ctx, validRequest)
	assert.ErrorIs(t, err, domain.ErrUnconfirmed)
	assert.NotErrorIs(t, err, domain.ErrUnreachable, "a created lantern must not look retryable")

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, domain.GatewayUnconfirmed, gwErr.Kind)
	assert.Equal(t, http.StatusCreated, gwErr.Status)

	// Reads have no side effect, so they stay retryable.
	_, err = client.GetLantern(ctx, "1")
	assert.ErrorIs(t, err, domain.ErrUnreachable)
}
