// Package conversation provides the application layer for the chat log:
// an append-only, time-ordered message sequence and the orchestration of
// one agent round-trip per send.
package conversation

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cookchat/cookchat/internal/application/recipeset"
	"github.com/cookchat/cookchat/internal/domain/conversation"
	"github.com/cookchat/cookchat/internal/ports/outbound"
	"github.com/cookchat/cookchat/pkg/errors"
	"go.uber.org/zap"
)

// Conversation copy, kept word-for-word stable for the transcript
const (
	placeholderText = "Let me check what I can cook for you..."
	emptySetText    = "😢 I found the recipe set but it’s empty. Try giving more or clearer ingredients!"
	summaryFormat   = "👩‍🍳 I found %d recipe(s) based on your ingredients!"
)

var (
	// ErrEmptyMessage rejects blank input before any state changes
	ErrEmptyMessage = stderrors.New("message is empty")
	// ErrResponsePending rejects overlapping sends; one agent round-trip
	// per conversation at a time
	ErrResponsePending = stderrors.New("a response is already pending")
)

// TokenSource supplies the current auth token for backend calls
type TokenSource interface {
	Token() string
}

// Log is the append-only conversation log and the orchestrator of the
// send lifecycle. Entries are never edited or removed within a session;
// logout resets the log atomically.
type Log struct {
	gateway  outbound.Gateway
	resolver *recipeset.Resolver
	tokens   TokenSource
	logger   *zap.Logger

	mu       sync.Mutex
	messages []conversation.Message
	pending  bool
	// epoch changes on every Reset. A send that was in flight when the
	// log was reset appends nothing into the new epoch: completions
	// check the epoch before appending.
	epoch uint64
}

// NewLog creates the conversation log
func NewLog(gateway outbound.Gateway, resolver *recipeset.Resolver, tokens TokenSource, logger *zap.Logger) *Log {
	return &Log{
		gateway:  gateway,
		resolver: resolver,
		tokens:   tokens,
		logger:   logger.Named("conversation"),
	}
}

// Messages returns a snapshot of the log in append order
func (l *Log) Messages() []conversation.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]conversation.Message(nil), l.messages...)
}

// Len returns the number of messages in the log
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// Pending reports whether an agent round-trip is in flight
func (l *Log) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// AppendUser appends a sanitized user message
func (l *Log) AppendUser(text string) conversation.Message {
	msg := conversation.NewUserMessage(text)
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// AppendAI appends an AI message
func (l *Log) AppendAI(text string, opts ...conversation.MessageOption) conversation.Message {
	msg := conversation.NewAIMessage(text, opts...)
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
	return msg
}

// SendAndRespond runs one full agent round-trip: append the user
// message and a placeholder, call the agent, classify the response, and
// append the AI reply or the resolved recipe-set messages. Every failure
// past the input guards becomes a single AI error message; the pending
// flag is cleared unconditionally.
func (l *Log) SendAndRespond(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	l.mu.Lock()
	if l.pending {
		l.mu.Unlock()
		return ErrResponsePending
	}
	l.pending = true
	epoch := l.epoch
	l.messages = append(l.messages,
		conversation.NewUserMessage(text),
		conversation.NewAIMessage(placeholderText),
	)
	l.mu.Unlock()

	defer l.clearPending(epoch)

	result, err := l.gateway.RunAgent(ctx, l.tokens.Token(), text)
	if err != nil {
		l.appendFailure(epoch, errors.NewAgentFailedError(errors.ReasonOf(err), err))
		return nil
	}

	classified := recipeset.Classify(result)
	if classified.Kind == recipeset.KindText {
		// The placeholder remains as prior history; the log is
		// append-only.
		l.appendIfCurrent(epoch, conversation.NewAIMessage(result))
		return nil
	}

	set, err := l.resolver.Resolve(ctx, classified.SetID)
	if err != nil {
		l.appendFailure(epoch, err)
		return nil
	}

	if set.IsEmpty() {
		l.appendIfCurrent(epoch, conversation.NewAIMessage(emptySetText))
		return nil
	}

	batch := make([]conversation.Message, 0, set.Len()+1)
	batch = append(batch, conversation.NewAIMessage(
		fmt.Sprintf(summaryFormat, set.Len()),
		conversation.WithRecipeSet(set.ID()),
	))
	for _, r := range set.Recipes() {
		batch = append(batch, conversation.NewAIMessage(
			r.Title,
			conversation.WithRecipeSet(set.ID()),
			conversation.WithRecipe(r),
		))
	}
	l.appendIfCurrent(epoch, batch...)

	return nil
}

// Reset atomically empties the log. Registered as the session's logout
// hook; bumping the epoch makes any in-flight send complete against the
// old epoch and drop its appends.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.pending = false
	l.epoch++
}

// appendIfCurrent appends messages only when the log still belongs to
// the epoch the operation started in. Stale completions from a previous
// session are dropped rather than resurrected into the new log.
func (l *Log) appendIfCurrent(epoch uint64, msgs ...conversation.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch != epoch {
		l.logger.Debug("Dropping stale append after reset", zap.Int("messages", len(msgs)))
		return
	}
	l.messages = append(l.messages, msgs...)
}

// appendFailure converts a failure into exactly one AI error message.
// Nothing is retried here; retries are a caller policy.
func (l *Log) appendFailure(epoch uint64, err error) {
	l.logger.Warn("Send failed", zap.Error(err))
	reason := errors.ReasonOf(err)
	if reason == "" {
		reason = "Could not process your request."
	}
	l.appendIfCurrent(epoch, conversation.NewAIMessage("Error: "+reason))
}

// clearPending clears the pending flag for the epoch the send started
// in. After a reset the flag already belongs to the next session and a
// stale completion must not touch it.
func (l *Log) clearPending(epoch uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch == epoch {
		l.pending = false
	}
}
