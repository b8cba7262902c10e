// Package search maintains a full-text index over accepted messages so a
// client can grep its history without rescanning the shared log.
package search

import (
	"context"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"safespace/domain"
)

const defaultLimit = 10

// MessageIndex wraps a bluge writer. Every accepted message is indexed as
// one document with its sender, text and timestamp stored.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger, limit *int) *MessageIndex {
	idx := &MessageIndex{writer: writer, log: log, limit: defaultLimit}
	if limit != nil && *limit > 0 {
		idx.limit = *limit
	}
	return idx
}

// Add indexes one message. Messages carry no identifier of their own, so
// each document gets a fresh one.
func (i *MessageIndex) Add(msg domain.Message) error {
	doc := bluge.NewDocument(uuid.NewString()).
		AddField(bluge.NewKeywordField("sender", msg.Sender).StoreValue()).
		AddField(bluge.NewTextField("text", msg.Text).StoreValue()).
		AddField(bluge.NewKeywordField("timestamp", msg.Timestamp).StoreValue())

	return i.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message text and returns the stored
// messages, best match first.
func (i *MessageIndex) Search(ctx context.Context, terms string) ([]domain.Message, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Closing index reader failed", "error", err)
		}
	}()

	query := bluge.NewMatchQuery(terms).SetField("text")
	request := bluge.NewTopNSearch(i.limit, query)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var results []domain.Message
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var msg domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "sender":
				msg.Sender = string(value)
			case "text":
				msg.Text = string(value)
			case "timestamp":
				msg.Timestamp = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		results = append(results, msg)
	}
	return results, nil
}
