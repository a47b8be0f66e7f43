package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cookchat/cookchat/internal/infrastructure/config"
	"github.com/cookchat/cookchat/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = server.URL
	cfg.API.Timeout = 5 * time.Second

	return NewClient(cfg, zap.NewNop()), server
}

func TestLogin(t *testing.T) {
	t.Run("Success_ReturnsToken", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/login", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"token":"tok-123"}`))
		}))

		token, err := client.Login(context.Background(), "alice", "hunter2")

		require.NoError(t, err)
		assert.Equal(t, "tok-123", token)
	})

	t.Run("Rejected_SurfacesJSONMessage", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
		}))

		_, err := client.Login(context.Background(), "alice", "wrong")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeRequestFailed))
		assert.Equal(t, "Bad credentials", errors.ReasonOf(err))
	})

	t.Run("MissingToken_IsAFailure", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))

		_, err := client.Login(context.Background(), "alice", "hunter2")

		assert.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		w.Write([]byte("User registered successfully\n"))
	}))

	msg, err := client.Register(context.Background(), "bob", "secret")

	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", msg)
}

func TestFetchIdentity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte("Hello, alice 👋"))
	}))

	greeting, err := client.FetchIdentity(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, "Hello, alice 👋", greeting)
}

func TestRunAgent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipe_agent/run", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write([]byte("set_9f8"))
	}))

	result, err := client.RunAgent(context.Background(), "tok-123", "chicken, rice")

	require.NoError(t, err)
	assert.Equal(t, "set_9f8", result)
}

func TestFetchRecipeSet(t *testing.T) {
	t.Run("DecodesRecipeArray", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The misspelled path is the backend's wire contract
			assert.Equal(t, "/recpies/set_9f8", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[{"title":"Fried Rice","ingredients":["rice"],"instructions":["fry"]},{"title":"Chicken Soup","ingredients":["chicken"],"instructions":["boil"],"estimatedTimeMinutes":40}]`))
		}))

		recipes, err := client.FetchRecipeSet(context.Background(), "tok-123", "set_9f8")

		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "Fried Rice", recipes[0].Title)
		assert.Equal(t, 40, recipes[1].EstimatedTimeMinutes)
	})

	t.Run("EmptyArray_IsNotAnError", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))

		recipes, err := client.FetchRecipeSet(context.Background(), "tok-123", "set_000000")

		require.NoError(t, err)
		assert.Empty(t, recipes)
	})
}

func TestFetchRecipeByTitle(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recpies/set/set_9f8/title/Chicken%20Soup", r.URL.RequestURI())
		w.Write([]byte(`{"title":"Chicken Soup","ingredients":["chicken"],"instructions":["boil"]}`))
	}))

	r, err := client.FetchRecipeByTitle(context.Background(), "tok-123", "set_9f8", "Chicken Soup")

	require.NoError(t, err)
	assert.Equal(t, "Chicken Soup", r.Title)
}

func TestErrorReasonPriority(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		expect string
	}{
		{"JSONMessageField", `{"message":"from message","error":"from error"}`, "from message"},
		{"JSONErrorField", `{"error":"from error"}`, "from error"},
		{"PlainTextBody", "something broke", "something broke"},
		{"EmptyJSONObject_FallsBackToText", `{}`, "{}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tc.body))
			}))

			_, err := client.RunAgent(context.Background(), "tok", "input")

			require.Error(t, err)
			assert.Equal(t, tc.expect, errors.ReasonOf(err))
		})
	}

	t.Run("EmptyBody_FallsBackToStatusText", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.RunAgent(context.Background(), "tok", "input")

		require.Error(t, err)
		assert.Contains(t, errors.ReasonOf(err), "502")
	})
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // deliberately unreachable

	cfg := &config.Config{}
	cfg.API.BaseURL = server.URL
	cfg.API.Timeout = time.Second
	client := NewClient(cfg, zap.NewNop())

	_, err := client.RunAgent(context.Background(), "tok", "input")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeRequestFailed))
}
