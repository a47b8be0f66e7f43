package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cookchat/cookchat/pkg/errors"
	"github.com/cookchat/cookchat/test/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memPersistence is an in-memory TokenPersistence for tests
type memPersistence struct {
	mu    sync.Mutex
	token string
}

func (m *memPersistence) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *memPersistence) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memPersistence) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}

func newTestStore(gateway *testutils.FakeGateway, persisted *memPersistence) *Store {
	return NewStore(gateway, persisted, zap.NewNop())
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestInitialize(t *testing.T) {
	t.Run("NoPersistedToken_StaysUnauthenticated", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		store := newTestStore(gateway, &memPersistence{})

		require.NoError(t, store.Initialize(context.Background()))

		assert.Equal(t, StateUnauthenticated, store.State())
		assert.EqualValues(t, 0, gateway.FetchIdentityCalls.Load())
	})

	t.Run("ValidToken_DerivesUsernameFromGreeting", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			assert.Equal(t, "tok-abc", token)
			return "Hello, alice 👋", nil
		}
		store := newTestStore(gateway, &memPersistence{token: "tok-abc"})

		require.NoError(t, store.Initialize(context.Background()))

		assert.Equal(t, StateAuthenticated, store.State())
		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, "alice", store.Username())
		assert.Equal(t, "tok-abc", store.Token())
	})

	t.Run("UnrecognizableGreeting_FallsBackToPlaceholder", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "Welcome back!", nil
		}
		store := newTestStore(gateway, &memPersistence{token: "tok-abc"})

		require.NoError(t, store.Initialize(context.Background()))

		assert.Equal(t, FallbackUsername, store.Username())
	})

	t.Run("IdentityCheckFailure_DiscardsToken", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "", errors.NewRequestFailedError("token revoked", nil)
		}
		persisted := &memPersistence{token: "tok-stale"}
		store := newTestStore(gateway, persisted)

		hookRan := false
		store.OnLogout(func() { hookRan = true })

		err := store.Initialize(context.Background())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeIdentityCheckFailed))
		assert.Equal(t, StateUnauthenticated, store.State())
		assert.Empty(t, store.Token())
		stored, _ := persisted.Load()
		assert.Empty(t, stored)
		assert.True(t, hookRan)
	})

	t.Run("ExpiredJWT_DiscardedWithoutNetworkCall", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		persisted := &memPersistence{token: expiredJWT(t)}
		store := newTestStore(gateway, persisted)

		err := store.Initialize(context.Background())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeIdentityCheckFailed))
		assert.EqualValues(t, 0, gateway.FetchIdentityCalls.Load())
		stored, _ := persisted.Load()
		assert.Empty(t, stored)
	})

	t.Run("OpaqueToken_FallsThroughToNetworkCheck", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "Hello, bob 👋", nil
		}
		store := newTestStore(gateway, &memPersistence{token: "not-a-jwt"})

		require.NoError(t, store.Initialize(context.Background()))

		assert.Equal(t, "bob", store.Username())
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success_StoresAndPersistsToken", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.LoginFunc = func(ctx context.Context, username, password string) (string, error) {
			return "tok-new", nil
		}
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "Hello, alice 👋", nil
		}
		persisted := &memPersistence{}
		store := newTestStore(gateway, persisted)

		require.NoError(t, store.Login(context.Background(), "alice", "hunter2"))

		assert.True(t, store.IsAuthenticated())
		assert.Equal(t, "tok-new", store.Token())
		assert.Equal(t, "alice", store.Username())
		stored, _ := persisted.Load()
		assert.Equal(t, "tok-new", stored)
	})

	t.Run("ClearsExistingTokenBeforeAttempt", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.LoginFunc = func(ctx context.Context, username, password string) (string, error) {
			return "", errors.NewRequestFailedError("bad credentials", nil)
		}
		persisted := &memPersistence{token: "tok-old"}
		store := newTestStore(gateway, persisted)

		err := store.Login(context.Background(), "alice", "wrong")

		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodeAuthFailed))
		assert.Equal(t, "bad credentials", errors.ReasonOf(err))
		assert.Equal(t, StateUnauthenticated, store.State())
		stored, _ := persisted.Load()
		assert.Empty(t, stored, "stale token must not survive a failed login")
	})

	t.Run("GreetingWithoutPattern_FallsBackToEnteredUsername", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.LoginFunc = func(ctx context.Context, username, password string) (string, error) {
			return "tok-new", nil
		}
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "Howdy", nil
		}
		store := newTestStore(gateway, &memPersistence{})

		require.NoError(t, store.Login(context.Background(), "carol", "pw"))

		assert.Equal(t, "carol", store.Username())
	})

	t.Run("IdentityFetchFailureAfterLogin_DowngradesSession", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.LoginFunc = func(ctx context.Context, username, password string) (string, error) {
			return "tok-new", nil
		}
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "", errors.NewRequestFailedError("backend unreachable", nil)
		}
		persisted := &memPersistence{}
		store := newTestStore(gateway, persisted)

		err := store.Login(context.Background(), "alice", "hunter2")

		require.Error(t, err)
		assert.Equal(t, StateUnauthenticated, store.State())
		stored, _ := persisted.Load()
		assert.Empty(t, stored)
	})
}

func TestRegister(t *testing.T) {
	t.Run("PassesThroughConfirmation", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.RegisterFunc = func(ctx context.Context, username, password string) (string, error) {
			return "User registered successfully", nil
		}
		store := newTestStore(gateway, &memPersistence{})

		msg, err := store.Register(context.Background(), "dave", "pw")

		require.NoError(t, err)
		assert.Equal(t, "User registered successfully", msg)
		assert.Equal(t, StateUnauthenticated, store.State())
	})

	t.Run("Failure_DoesNotTouchSessionState", func(t *testing.T) {
		gateway := testutils.NewFakeGateway()
		gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
			return "Hello, alice 👋", nil
		}
		store := newTestStore(gateway, &memPersistence{token: "tok-abc"})
		require.NoError(t, store.Initialize(context.Background()))

		gateway.RegisterFunc = func(ctx context.Context, username, password string) (string, error) {
			return "", errors.NewRequestFailedError("username taken", nil)
		}
		_, err := store.Register(context.Background(), "alice", "pw")

		require.Error(t, err)
		assert.True(t, store.IsAuthenticated())
	})
}

func TestLogout(t *testing.T) {
	gateway := testutils.NewFakeGateway()
	gateway.FetchIdentityFunc = func(ctx context.Context, token string) (string, error) {
		return "Hello, alice 👋", nil
	}
	persisted := &memPersistence{token: "tok-abc"}
	store := newTestStore(gateway, persisted)
	require.NoError(t, store.Initialize(context.Background()))

	hookCalls := 0
	store.OnLogout(func() { hookCalls++ })

	store.Logout()

	assert.Equal(t, StateUnauthenticated, store.State())
	assert.Empty(t, store.Token())
	assert.Empty(t, store.Username())
	stored, _ := persisted.Load()
	assert.Empty(t, stored)
	assert.Equal(t, 1, hookCalls)

	// Logout is total and repeatable
	store.Logout()
	assert.Equal(t, 2, hookCalls)
}
