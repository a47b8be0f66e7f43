// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/cookchat/cookchat/internal/domain/recipe"
)

// Gateway defines the backend operations the client core depends on.
// Implementations surface every non-2xx outcome as a single classified
// request failure carrying a human-readable reason.
type Gateway interface {
	// Login exchanges credentials for an opaque token
	Login(ctx context.Context, username, password string) (string, error)

	// Register creates an account; returns the backend's plain-text
	// confirmation. Stateless with respect to the session.
	Register(ctx context.Context, username, password string) (string, error)

	// FetchIdentity returns the plain-text greeting for the token's user
	FetchIdentity(ctx context.Context, token string) (string, error)

	// RunAgent submits free-text input; the response is plain text,
	// either a conversational reply or an opaque recipe set id
	RunAgent(ctx context.Context, token, input string) (string, error)

	// FetchRecipeSet returns the recipes of a generated set
	FetchRecipeSet(ctx context.Context, token, setID string) ([]recipe.Recipe, error)

	// FetchRecipeByTitle returns one recipe of a set by exact title
	FetchRecipeByTitle(ctx context.Context, token, setID, title string) (recipe.Recipe, error)
}
