// Package testutils provides test doubles and test data factories
package testutils

import (
	"context"
	"sync/atomic"

	"github.com/cookchat/cookchat/internal/domain/recipe"
	"github.com/cookchat/cookchat/pkg/errors"
)

// FakeGateway is a scriptable in-memory Gateway implementation. Each
// operation has a programmable func field; unprogrammed operations return
// a request failure. Call counters are atomic so concurrency tests can
// assert fetch counts.
type FakeGateway struct {
	LoginFunc              func(ctx context.Context, username, password string) (string, error)
	RegisterFunc           func(ctx context.Context, username, password string) (string, error)
	FetchIdentityFunc      func(ctx context.Context, token string) (string, error)
	RunAgentFunc           func(ctx context.Context, token, input string) (string, error)
	FetchRecipeSetFunc     func(ctx context.Context, token, setID string) ([]recipe.Recipe, error)
	FetchRecipeByTitleFunc func(ctx context.Context, token, setID, title string) (recipe.Recipe, error)

	LoginCalls              atomic.Int64
	RegisterCalls           atomic.Int64
	FetchIdentityCalls      atomic.Int64
	RunAgentCalls           atomic.Int64
	FetchRecipeSetCalls     atomic.Int64
	FetchRecipeByTitleCalls atomic.Int64
}

// NewFakeGateway creates an unprogrammed fake gateway
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Login(ctx context.Context, username, password string) (string, error) {
	g.LoginCalls.Add(1)
	if g.LoginFunc == nil {
		return "", errors.NewRequestFailedError("login not programmed", nil)
	}
	return g.LoginFunc(ctx, username, password)
}

func (g *FakeGateway) Register(ctx context.Context, username, password string) (string, error) {
	g.RegisterCalls.Add(1)
	if g.RegisterFunc == nil {
		return "", errors.NewRequestFailedError("register not programmed", nil)
	}
	return g.RegisterFunc(ctx, username, password)
}

func (g *FakeGateway) FetchIdentity(ctx context.Context, token string) (string, error) {
	g.FetchIdentityCalls.Add(1)
	if g.FetchIdentityFunc == nil {
		return "", errors.NewRequestFailedError("identity not programmed", nil)
	}
	return g.FetchIdentityFunc(ctx, token)
}

func (g *FakeGateway) RunAgent(ctx context.Context, token, input string) (string, error) {
	g.RunAgentCalls.Add(1)
	if g.RunAgentFunc == nil {
		return "", errors.NewRequestFailedError("agent not programmed", nil)
	}
	return g.RunAgentFunc(ctx, token, input)
}

func (g *FakeGateway) FetchRecipeSet(ctx context.Context, token, setID string) ([]recipe.Recipe, error) {
	g.FetchRecipeSetCalls.Add(1)
	if g.FetchRecipeSetFunc == nil {
		return nil, errors.NewRequestFailedError("recipe set not programmed", nil)
	}
	return g.FetchRecipeSetFunc(ctx, token, setID)
}

func (g *FakeGateway) FetchRecipeByTitle(ctx context.Context, token, setID, title string) (recipe.Recipe, error) {
	g.FetchRecipeByTitleCalls.Add(1)
	if g.FetchRecipeByTitleFunc == nil {
		return recipe.Recipe{}, errors.NewRequestFailedError("recipe by title not programmed", nil)
	}
	return g.FetchRecipeByTitleFunc(ctx, token, setID, title)
}

// StaticTokenSource returns a fixed token for resolver and conversation
// tests that do not exercise the session lifecycle
type StaticTokenSource string

func (s StaticTokenSource) Token() string {
	return string(s)
}
