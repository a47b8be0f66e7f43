// Package recipeset resolves agent responses into recipe sets.
// It decides whether a response is a recipe-set reference or plain text,
// fetches and caches set contents, and answers later title lookups
// against the cached sets.
package recipeset

import (
	"context"
	"regexp"
	"sync"

	"github.com/cookchat/cookchat/internal/domain/recipe"
	"github.com/cookchat/cookchat/internal/ports/outbound"
	"github.com/cookchat/cookchat/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// setIDPattern is the conservative opaque-identifier shape the agent uses
// for set ids. This is a heuristic boundary, not a protocol guarantee: a
// plain-text reply that happens to match is misclassified. The backend
// defines no protocol-level discriminator, so the heuristic is kept as is
// for compatibility.
var setIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{6,}$`)

// Kind classifies an agent response
type Kind int

const (
	// KindText is a conversational reply to show verbatim
	KindText Kind = iota
	// KindSetRef is an opaque id addressing a generated recipe set
	KindSetRef
)

// Classification is the outcome of classifying one agent response
type Classification struct {
	Kind  Kind
	SetID string
}

// Classify decides whether an agent response is a recipe-set reference
// or plain conversation text
func Classify(response string) Classification {
	if setIDPattern.MatchString(response) {
		return Classification{Kind: KindSetRef, SetID: response}
	}
	return Classification{Kind: KindText}
}

// TokenSource supplies the current auth token for backend calls
type TokenSource interface {
	Token() string
}

// Resolver fetches and caches recipe sets keyed by set id. A set is
// fetched at most once per id; concurrent resolutions of the same
// uncached id share a single in-flight fetch.
type Resolver struct {
	gateway outbound.Gateway
	tokens  TokenSource
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]*recipe.Set
	group singleflight.Group
}

// NewResolver creates a new resolver
func NewResolver(gateway outbound.Gateway, tokens TokenSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		gateway: gateway,
		tokens:  tokens,
		logger:  logger.Named("recipeset-resolver"),
		cache:   make(map[string]*recipe.Set),
	}
}

// Resolve returns the set for setID, fetching it on first reference.
// Later references to the same id reuse the cached instance; backend
// sets are immutable for a given id. A successfully fetched set with
// zero recipes is a valid terminal result, not an error.
func (r *Resolver) Resolve(ctx context.Context, setID string) (*recipe.Set, error) {
	if set, ok := r.Cached(setID); ok {
		return set, nil
	}

	result, err, shared := r.group.Do(setID, func() (interface{}, error) {
		// A concurrent caller may have populated the cache while this
		// call waited on the flight group.
		if set, ok := r.Cached(setID); ok {
			return set, nil
		}

		recipes, err := r.gateway.FetchRecipeSet(ctx, r.tokens.Token(), setID)
		if err != nil {
			return nil, errors.NewSetFetchFailedError(setID, errors.ReasonOf(err), err)
		}

		set, err := recipe.NewSet(setID, recipes)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[setID] = set
		r.mu.Unlock()

		r.logger.Debug("Recipe set resolved",
			zap.String("set_id", setID),
			zap.Int("recipes", set.Len()),
		)
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("Recipe set resolution shared in-flight fetch", zap.String("set_id", setID))
	}

	return result.(*recipe.Set), nil
}

// Cached returns the cached set for setID, if present
func (r *Resolver) Cached(setID string) (*recipe.Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.cache[setID]
	return set, ok
}

// LookupByTitle finds a recipe by exact title within the cached set for
// setID. Missing set or missing title both report not found.
func (r *Resolver) LookupByTitle(setID, title string) (recipe.Recipe, bool) {
	set, ok := r.Cached(setID)
	if !ok {
		r.logger.Warn("Title lookup against unresolved set", zap.String("set_id", setID))
		return recipe.Recipe{}, false
	}
	return set.LookupByTitle(title)
}

// LookupOrFetch finds a recipe by title in the cached set, falling back
// to the backend's by-title endpoint when the cached set does not carry
// the title.
func (r *Resolver) LookupOrFetch(ctx context.Context, setID, title string) (recipe.Recipe, error) {
	if found, ok := r.LookupByTitle(setID, title); ok {
		return found, nil
	}

	fetched, err := r.gateway.FetchRecipeByTitle(ctx, r.tokens.Token(), setID, title)
	if err != nil {
		return recipe.Recipe{}, errors.NewSetFetchFailedError(setID, errors.ReasonOf(err), err)
	}
	return fetched, nil
}

// Reset drops every cached set. Called on logout; the next session
// starts with an empty cache.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*recipe.Set)
}
