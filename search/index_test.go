package search

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"safespace/domain"
)

func openIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default(), nil)
}

func TestMessageIndex_SearchByText(t *testing.T) {
	req := require.New(t)
	idx := openIndex(t)

	now := time.Now()
	req.NoError(idx.Add(domain.NewMessage("alice", "lunch at the park tomorrow", now)))
	req.NoError(idx.Add(domain.NewMessage("bob", "homework is due tomorrow", now)))
	req.NoError(idx.Add(domain.NewMessage("alice", "did you feed the cat", now)))

	results, err := idx.Search(context.Background(), "tomorrow")
	req.NoError(err)
	req.Len(results, 2)
	req.ElementsMatch([]string{"alice", "bob"}, lo.Map(results, func(m domain.Message, _ int) string {
		return m.Sender
	}))

	for _, m := range results {
		req.NotEmpty(m.Text)
		req.NotEmpty(m.Timestamp)
	}
}

func TestMessageIndex_NoMatches(t *testing.T) {
	req := require.New(t)
	idx := openIndex(t)

	req.NoError(idx.Add(domain.NewMessage("alice", "hello there", time.Now())))

	results, err := idx.Search(context.Background(), "absent")
	req.NoError(err)
	req.Empty(results)
}

func TestMessageIndex_LimitCapsResults(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	t.Cleanup(func() { _ = writer.Close() })

	idx := NewMessageIndex(writer, slog.Default(), lo.ToPtr(2))
	for range 5 {
		req.NoError(idx.Add(domain.NewMessage("alice", "same words every time", time.Now())))
	}

	results, err := idx.Search(context.Background(), "words")
	req.NoError(err)
	req.Len(results, 2)
}
