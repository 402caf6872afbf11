//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_search_index.go -package=mocks
// Package search maintains a full-text index of messages and usernames.
// The index is derived data: Badger stays the source of truth.
package search

import (
	"context"
	"log/slog"
	"room-chat/domain"
	"room-chat/errors"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/blugelabs/bluge"
)

const (
	fieldID       = "_id"
	fieldKind     = "kind"
	fieldContent  = "content"
	fieldRoom     = "room_id"
	fieldAuthor   = "author_id"
	fieldLang     = "lang"
	fieldSentAt   = "sent_at"
	fieldUsername = "username"
	fieldUserKey  = "username_lower"

	kindMessage = "message"
	kindUser    = "user"

	UnknownLang = "und"
)

type IIndex interface {
	IndexMessage(message domain.Message) error
	DeleteMessages(ids ...domain.MessageID) error
	DeleteRoom(ctx context.Context, roomID domain.RoomID) error
	IndexUser(user domain.User) error
	SearchMessages(ctx context.Context, roomIDs []domain.RoomID, query MessageQuery) ([]MessageHit, error)
	SearchUsers(ctx context.Context, prefix string, limit int) ([]domain.UserID, error)
}

// MessageHit is a message matching a search, best score first.
type MessageHit struct {
	ID       domain.MessageID `json:"id"`
	RoomID   domain.RoomID    `json:"room_id"`
	AuthorID domain.UserID    `json:"author_id"`
	Lang     string           `json:"lang"`
	SentAt   time.Time        `json:"sent_at"`
	Score    float64          `json:"score"`
}

type Index struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// Open opens the index at path, or in memory when path is empty.
func Open(path string, log *slog.Logger) (*Index, error) {
	config := bluge.InMemoryOnlyConfig()
	if path != "" {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer, log: log}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// DetectLang returns the ISO 639-1 code of the content language,
// or UnknownLang when the detection is not reliable.
func DetectLang(content string) string {
	info := whatlanggo.Detect(content)
	code := info.Lang.Iso6391()
	if code == "" || !info.IsReliable() {
		return UnknownLang
	}
	return code
}

func messageDocID(id domain.MessageID) string { return kindMessage + ":" + id.String() }

func userDocID(id domain.UserID) string { return kindUser + ":" + id.String() }

// IndexMessage adds or replaces the document of a message.
func (i *Index) IndexMessage(message domain.Message) error {
	doc := bluge.NewDocument(messageDocID(message.ID)).
		AddField(bluge.NewKeywordField(fieldKind, kindMessage)).
		AddField(bluge.NewTextField(fieldContent, message.Content)).
		AddField(bluge.NewKeywordField(fieldRoom, message.RoomID.String()).StoreValue()).
		AddField(bluge.NewKeywordField(fieldAuthor, message.AuthorID.String()).StoreValue()).
		AddField(bluge.NewKeywordField(fieldLang, DetectLang(message.Content)).StoreValue()).
		AddField(bluge.NewDateTimeField(fieldSentAt, message.SentAt).StoreValue().Sortable())
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return errors.Store(err)
	}
	return nil
}

func (i *Index) DeleteMessages(ids ...domain.MessageID) error {
	if len(ids) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, id := range ids {
		batch.Delete(bluge.Identifier(messageDocID(id)))
	}
	if err := i.writer.Batch(batch); err != nil {
		return errors.Store(err)
	}
	return nil
}

// DeleteRoom removes every message document of the room.
func (i *Index) DeleteRoom(ctx context.Context, roomID domain.RoomID) error {
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(kindMessage).SetField(fieldKind)).
		AddMust(bluge.NewTermQuery(roomID.String()).SetField(fieldRoom))
	docIDs, err := i.collectIDs(ctx, bluge.NewAllMatches(query))
	if err != nil {
		return err
	}
	if len(docIDs) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, id := range docIDs {
		batch.Delete(bluge.Identifier(id))
	}
	if err = i.writer.Batch(batch); err != nil {
		return errors.Store(err)
	}
	i.log.Debug("Room messages removed from index", "room_id", roomID.String(), "count", len(docIDs))
	return nil
}

// IndexUser adds or replaces the document of a user.
func (i *Index) IndexUser(user domain.User) error {
	doc := bluge.NewDocument(userDocID(user.ID)).
		AddField(bluge.NewKeywordField(fieldKind, kindUser)).
		AddField(bluge.NewKeywordField(fieldUserKey, strings.ToLower(user.Username)).Sortable()).
		AddField(bluge.NewTextField(fieldUsername, user.Username).StoreValue())
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return errors.Store(err)
	}
	return nil
}

// SearchMessages runs a full-text query restricted to the given rooms.
func (i *Index) SearchMessages(ctx context.Context, roomIDs []domain.RoomID, query MessageQuery) ([]MessageHit, error) {
	if strings.TrimSpace(query.Terms) == "" {
		return nil, errors.ErrEmptyQuery
	}
	if len(roomIDs) == 0 {
		return []MessageHit{}, nil
	}

	rooms := bluge.NewBooleanQuery().SetMinShould(1)
	for _, roomID := range roomIDs {
		rooms.AddShould(bluge.NewTermQuery(roomID.String()).SetField(fieldRoom))
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(kindMessage).SetField(fieldKind)).
		AddMust(bluge.NewMatchQuery(query.Terms).SetField(fieldContent)).
		AddMust(rooms)
	if query.Lang != "" {
		q.AddMust(bluge.NewTermQuery(query.Lang).SetField(fieldLang))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, errors.Store(err)
	}
	defer reader.Close()

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limitOrDefault(query.Limit), q))
	if err != nil {
		return nil, errors.Store(err)
	}

	hits := make([]MessageHit, 0)
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := MessageHit{Score: match.Score}
		var parseErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldID:
				hit.ID, parseErr = domain.ParseMessageID(strings.TrimPrefix(string(value), kindMessage+":"))
			case fieldRoom:
				hit.RoomID, parseErr = domain.ParseRoomID(string(value))
			case fieldAuthor:
				hit.AuthorID = domain.UserID(value)
			case fieldLang:
				hit.Lang = string(value)
			case fieldSentAt:
				hit.SentAt, parseErr = bluge.DecodeDateTime(value)
			}
			return parseErr == nil
		})
		if err == nil && parseErr != nil {
			err = parseErr
		}
		if err != nil {
			break
		}
		hit.SentAt = hit.SentAt.UTC()
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return hits, nil
}

// SearchUsers returns the ids of users whose username starts with prefix, case-insensitively.
func (i *Index) SearchUsers(ctx context.Context, prefix string, limit int) ([]domain.UserID, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, errors.ErrEmptyQuery
	}
	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(kindUser).SetField(fieldKind)).
		AddMust(bluge.NewPrefixQuery(prefix).SetField(fieldUserKey))
	request := bluge.NewTopNSearch(limitOrDefault(limit), q).SortBy([]string{fieldUserKey})

	docIDs, err := i.collectIDs(ctx, request)
	if err != nil {
		return nil, err
	}
	userIDs := make([]domain.UserID, 0, len(docIDs))
	for _, id := range docIDs {
		userIDs = append(userIDs, domain.UserID(strings.TrimPrefix(id, kindUser+":")))
	}
	return userIDs, nil
}

func (i *Index) collectIDs(ctx context.Context, request bluge.SearchRequest) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, errors.Store(err)
	}
	defer reader.Close()

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, errors.Store(err)
	}
	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return ids, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > 100 {
		return 100
	}
	return limit
}
