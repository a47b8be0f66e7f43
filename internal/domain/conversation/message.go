// Package conversation contains the domain model for the chat log.
package conversation

import (
	"html"
	"time"

	"github.com/cookchat/cookchat/internal/domain/recipe"
	"github.com/google/uuid"
)

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry in the conversation log. Messages are immutable
// once appended; the log only ever appends, never mutates or removes.
type Message struct {
	// ID is unique even under rapid successive creation; timestamps
	// alone are not sufficient for that.
	ID        uuid.UUID
	Sender    Sender
	Content   string
	CreatedAt time.Time

	// RecipeSetID tags AI messages that reference a resolved recipe set.
	// User messages never carry one.
	RecipeSetID string

	// Recipe is an optional snapshot of a single recipe carried by
	// title messages, so a selection can open it without a lookup.
	Recipe *recipe.Recipe
}

// NewUserMessage creates a user message with sanitized content.
// Markup-significant characters are escaped so user input cannot inject
// structure into the rendered transcript.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    SenderUser,
		Content:   Sanitize(text),
		CreatedAt: time.Now(),
	}
}

// NewAIMessage creates an AI message. An optional set id associates the
// message with a resolved recipe set; an optional snapshot carries one
// recipe for direct selection.
func NewAIMessage(text string, opts ...MessageOption) Message {
	msg := Message{
		ID:        uuid.New(),
		Sender:    SenderAI,
		Content:   Sanitize(text),
		CreatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&msg)
	}
	return msg
}

// MessageOption configures optional AI message attributes
type MessageOption func(*Message)

// WithRecipeSet tags the message with the recipe set it references
func WithRecipeSet(setID string) MessageOption {
	return func(m *Message) {
		m.RecipeSetID = setID
	}
}

// WithRecipe attaches a snapshot of a single recipe to the message
func WithRecipe(r recipe.Recipe) MessageOption {
	return func(m *Message) {
		snapshot := r.Clone()
		m.Recipe = &snapshot
	}
}

// HasRecipeSet reports whether the message references a recipe set
func (m Message) HasRecipeSet() bool {
	return m.RecipeSetID != ""
}

// Sanitize escapes markup-significant characters in free text. It is a
// plain text-sanitization step, independent of any rendering engine.
func Sanitize(text string) string {
	return html.EscapeString(text)
}
