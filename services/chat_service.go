// Package services exposes the client facade the command loop talks to.
// It ties the validation pipeline, the shared log and the search index
// together behind one Send/Messages/Search surface.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"safespace/domain"
	"safespace/errors"
	"safespace/history"
	"safespace/observability"
	"safespace/pipeline"
	"safespace/search"
	"safespace/session"
)

// SendResult reports what happened to one outgoing message. Sent is false
// both for blocked messages and for empty input; the Verdict tells which.
type SendResult struct {
	Sent    bool
	Empty   bool
	Verdict domain.Verdict
}

type IChatService interface {
	Send(ctx context.Context, text string) (SendResult, error)
	Messages() ([]domain.Message, error)
	Search(ctx context.Context, terms string) ([]domain.Message, error)
}

// ChatService consumes the synchronizer's reloads: every history snapshot,
// whether triggered by a local append, a change event or the poller, flows
// through ingest so foreign entries are indexed and surfaced exactly once.
type ChatService struct {
	log       *slog.Logger
	session   session.Session
	validator *pipeline.Validator
	history   *history.Synchronizer
	index     *search.MessageIndex
	stats     *observability.MonitoringManager

	mu    sync.Mutex
	seen  int
	onNew func([]domain.Message)
}

func NewChatService(
	log *slog.Logger,
	sess session.Session,
	validator *pipeline.Validator,
	hist *history.Synchronizer,
	index *search.MessageIndex,
	stats *observability.MonitoringManager,
) *ChatService {
	s := &ChatService{
		log:       log,
		session:   sess,
		validator: validator,
		history:   hist,
		index:     index,
		stats:     stats,
	}
	hist.OnReload(func(messages []domain.Message) {
		s.stats.IncrReloads()
		s.ingest(messages)
	})
	return s
}

// OnNewMessages registers the consumer fed with entries the client has not
// observed yet. A catch-up reload delivers every missed entry in one batch.
func (s *ChatService) OnNewMessages(fn func([]domain.Message)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNew = fn
}

// Send validates the text and, if accepted, appends it to the shared log.
// Indexing happens on the reload that follows the append. Blank input is
// dropped without running validation.
func (s *ChatService) Send(ctx context.Context, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResult{Empty: true}, nil
	}

	verdict, err := s.validator.Validate(ctx, text)
	if err != nil {
		return SendResult{}, err
	}
	if !verdict.Accepted {
		s.stats.IncrMessagesBlocked()
		s.countViolations(verdict)
		return SendResult{Verdict: verdict}, nil
	}

	if _, err := s.history.Append(s.session.Name, text); err != nil {
		if err == errors.ErrSnapshotConflict {
			s.stats.IncrAppendConflicts()
		}
		return SendResult{}, err
	}
	s.stats.IncrMessagesSent()
	return SendResult{Sent: true, Verdict: verdict}, nil
}

// Messages returns the current shared history, welcome entry first. The
// returned entries count as observed, so the new-message stream only carries
// what arrives afterwards.
func (s *ChatService) Messages() ([]domain.Message, error) {
	messages, err := s.history.LoadAll()
	if err != nil {
		return nil, err
	}
	s.ingest(messages)
	return messages, nil
}

// Search queries the local full-text index over accepted messages.
func (s *ChatService) Search(ctx context.Context, terms string) ([]domain.Message, error) {
	return s.index.Search(ctx, terms)
}

// Owns reports whether the message renders as the client's own.
func (s *ChatService) Owns(msg domain.Message) bool {
	return s.session.Owns(msg)
}

// ingest advances the high-water mark over the persisted log, indexes the
// entries past it (local and foreign alike) and hands them to the registered
// consumer. The synthetic welcome entry never counts.
func (s *ChatService) ingest(messages []domain.Message) {
	persisted := messages
	if len(persisted) > 0 && persisted[0].System() {
		persisted = persisted[1:]
	}

	s.mu.Lock()
	if len(persisted) < s.seen {
		// the log shrank underneath us, start over
		s.seen = 0
	}
	fresh := append([]domain.Message(nil), persisted[s.seen:]...)
	s.seen = len(persisted)
	fn := s.onNew
	s.mu.Unlock()

	if len(fresh) == 0 {
		return
	}
	for _, m := range fresh {
		// indexing is best effort: a broken index must not block the chat
		if err := s.index.Add(m); err != nil {
			s.log.Warn("Indexing the message failed", "error", err)
		}
	}
	if fn != nil {
		fn(fresh)
	}
}

func (s *ChatService) countViolations(verdict domain.Verdict) {
	var rules, model uint64
	for _, v := range verdict.Violations {
		if strings.HasPrefix(string(v.Rule), "ai_") {
			model++
		} else {
			rules++
		}
	}
	if rules > 0 {
		s.stats.IncrRuleViolations(rules)
	}
	if model > 0 {
		s.stats.IncrModelViolations(model)
	}
}
