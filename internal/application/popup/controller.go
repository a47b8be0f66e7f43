// Package popup holds the visibility state machine for the recipe detail
// modal: closed, or open with one recipe. The controller owns a copy of
// the displayed recipe, never a reference into a cached set.
package popup

import (
	"context"
	"sync"

	"github.com/cookchat/cookchat/internal/application/recipeset"
	"github.com/cookchat/cookchat/internal/domain/conversation"
	"github.com/cookchat/cookchat/internal/domain/recipe"
	"go.uber.org/zap"
)

// Controller drives the recipe modal
type Controller struct {
	resolver *recipeset.Resolver
	logger   *zap.Logger

	mu     sync.RWMutex
	open   bool
	recipe recipe.Recipe
}

// NewController creates a popup controller
func NewController(resolver *recipeset.Resolver, logger *zap.Logger) *Controller {
	return &Controller{
		resolver: resolver,
		logger:   logger.Named("popup"),
	}
}

// Open shows the modal with a copy of r, replacing whatever was shown
// before
func (c *Controller) Open(r recipe.Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.recipe = r.Clone()
}

// Close dismisses the modal and discards the held recipe. Always safe,
// regardless of current state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.recipe = recipe.Recipe{}
}

// IsOpen reports whether the modal is showing
func (c *Controller) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open
}

// Current returns the displayed recipe while the modal is open
func (c *Controller) Current() (recipe.Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.open {
		return recipe.Recipe{}, false
	}
	return c.recipe.Clone(), true
}

// SelectMessage opens the modal for a message carrying a recipe
// snapshot. Messages without one are ignored.
func (c *Controller) SelectMessage(msg conversation.Message) bool {
	if msg.Recipe == nil {
		return false
	}
	c.Open(*msg.Recipe)
	return true
}

// SelectTitle opens the modal for the recipe matching title within the
// set a summary message references, fetching it by title when the set
// is not resolved yet. A missing title is a no-op with a diagnosable
// signal.
func (c *Controller) SelectTitle(ctx context.Context, title, setID string) bool {
	found, err := c.resolver.LookupOrFetch(ctx, setID, title)
	if err != nil {
		c.logger.Warn("Recipe title not found in set",
			zap.String("title", title),
			zap.String("set_id", setID),
			zap.Error(err),
		)
		return false
	}
	c.Open(found)
	return true
}
