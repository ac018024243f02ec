//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-session/domain/search"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	fieldChannel = "channel"
	fieldNick    = "nick"
	fieldText    = "text"
	fieldAt      = "at"
	tsDigits     = 19
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessages(ctx context.Context, channel string, filter search.Filter) ([]DiskMessage, error)
}

// MessageRepository keeps the history of every channel.
// Badger holds the payloads ordered by time, bluge indexes their text for keyword filters.
type MessageRepository struct {
	db            *badger.DB
	writer        *bluge.Writer
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, writer: writer, log: log, limitMessages: limitMessages}
}

type DiskMessage struct {
	ID      uuid.UUID
	Channel string
	Nick    string
	Text    string // indexed, empty for non chat payloads
	Payload []byte // as sent on the channel
	At      int64  // nanoseconds
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{channel}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
//
// The badger key is also the bluge document id.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key := messageKey(message)
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), message.Payload)
	})
	if err != nil {
		return err
	}
	if message.Text == "" {
		return nil
	}

	doc := bluge.NewDocument(key).
		AddField(bluge.NewKeywordField(fieldChannel, message.Channel)).
		AddField(bluge.NewKeywordField(fieldNick, message.Nick).StoreValue()).
		AddField(bluge.NewTextField(fieldText, message.Text)).
		AddField(bluge.NewNumericField(fieldAt, float64(message.At)).Sortable())
	if err := m.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %s: %w", key, err)
	}
	return nil
}

// GetMessages returns the messages of channel matching filter, oldest first.
// When a limit is configured only the most recent matches are kept.
func (m MessageRepository) GetMessages(ctx context.Context, channel string, filter search.Filter) ([]DiskMessage, error) {
	var messages []DiskMessage
	var err error
	switch filter.Type {
	case search.Time:
		messages, err = m.scan(channel, filter)
	default:
		messages, err = m.searchKeyword(ctx, channel, filter.Key)
	}
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}

// scan walks the channel prefix from the newest key backwards.
func (m MessageRepository) scan(channel string, filter search.Filter) ([]DiskMessage, error) {
	if _, err := filter.Nanos(); err != nil {
		return nil, err
	}
	lowerBound := filter.Operator == search.Greater || filter.Operator == search.GreaterOrEqual

	var messages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(channelPrefix(channel))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Let's go the newest position msg:#channel:9999999999999999999
		it.Seek(append(slices.Clone(prefix), []byte("9999999999999999999")...))
		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitReached(len(messages)) {
				break
			}
			item := it.Item()
			at, id, ok := parseKey(item.Key()[len(prefix):])
			if !ok {
				continue
			}
			if !filter.Match(at) {
				if lowerBound {
					// keys only get older from here
					break
				}
				continue
			}
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			messages = append(messages, DiskMessage{ID: id, Channel: channel, Payload: payload, At: at})
		}
		return nil
	})
	return messages, err
}

// searchKeyword finds matching documents in bluge, newest first, then loads their payloads.
func (m MessageRepository) searchKeyword(ctx context.Context, channel, keyword string) ([]DiskMessage, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(channel).SetField(fieldChannel)).
		AddMust(bluge.NewMatchQuery(keyword).SetField(fieldText))
	size := 1000
	if m.limitMessages != nil {
		size = *m.limitMessages
	}
	request := bluge.NewTopNSearch(size, query).SortBy([]string{"-" + fieldAt})

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	var keys []string
	match, err := iterator.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}

	var messages []DiskMessage
	err = m.db.View(func(txn *badger.Txn) error {
		prefix := channelPrefix(channel)
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if err != nil {
				m.log.Warn("Indexed message missing from store", "key", key, "error", err)
				continue
			}
			at, id, ok := parseKey([]byte(key[len(prefix):]))
			if !ok {
				continue
			}
			payload, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			messages = append(messages, DiskMessage{ID: id, Channel: channel, Payload: payload, At: at})
		}
		return nil
	})
	return messages, err
}

func (m MessageRepository) limitReached(n int) bool {
	if m.limitMessages != nil && n == *m.limitMessages {
		m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
		return true
	}
	return false
}

func channelPrefix(channel string) string {
	return fmt.Sprintf("msg:%s:", channel)
}

func messageKey(message DiskMessage) string {
	return fmt.Sprintf("%s%019d:%s", channelPrefix(message.Channel), message.At, message.ID)
}

// parseKey reads "{timestamp_padded}:{uuid}".
func parseKey(rest []byte) (int64, uuid.UUID, bool) {
	if len(rest) < tsDigits+1 || rest[tsDigits] != ':' {
		return 0, uuid.Nil, false
	}
	at, err := strconv.ParseInt(string(rest[:tsDigits]), 10, 64)
	if err != nil {
		return 0, uuid.Nil, false
	}
	id, err := uuid.ParseBytes(rest[tsDigits+1:])
	if err != nil {
		return 0, uuid.Nil, false
	}
	return at, id, true
}
