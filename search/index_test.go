package search

import (
	"context"
	"log/slog"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openIndex(t *testing.T) *Index {
	t.Helper()
	index, err := Open("", logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func hitIDs(hits []MessageHit) []domain.MessageID {
	return lo.Map(hits, func(h MessageHit, _ int) domain.MessageID { return h.ID })
}

func TestIndex_SearchMessages_RestrictedToRooms(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)
	roomA := domain.NewRoomID()
	roomB := domain.NewRoomID()
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	// Given messages about invoices in two rooms
	inA := domain.NewMessage(roomA, "alice", "the invoice is ready", at)
	inB := domain.NewMessage(roomB, "bob", "another invoice to pay", at)
	other := domain.NewMessage(roomA, "alice", "lunch at noon", at)
	for _, m := range []domain.Message{inA, inB, other} {
		req.NoError(index.IndexMessage(m))
	}

	// When searching room A only
	hits, err := index.SearchMessages(ctx, []domain.RoomID{roomA}, ParseMessageQuery("invoice"))

	// Then only the message of room A matches
	req.NoError(err)
	req.Equal([]domain.MessageID{inA.ID}, hitIDs(hits))
	req.Equal(roomA, hits[0].RoomID)
	req.Equal(domain.UserID("alice"), hits[0].AuthorID)
	req.True(at.Equal(hits[0].SentAt))

	// When searching both rooms
	hits, err = index.SearchMessages(ctx, []domain.RoomID{roomA, roomB}, ParseMessageQuery("INVOICE"))
	req.NoError(err)
	req.ElementsMatch([]domain.MessageID{inA.ID, inB.ID}, hitIDs(hits))

	// When no room is readable
	hits, err = index.SearchMessages(ctx, nil, ParseMessageQuery("invoice"))
	req.NoError(err)
	req.Empty(hits)

	_, err = index.SearchMessages(ctx, []domain.RoomID{roomA}, ParseMessageQuery("   "))
	req.ErrorIs(err, errors.ErrEmptyQuery)
}

func TestIndex_SearchMessages_ByLang(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)
	roomID := domain.NewRoomID()
	english := domain.NewMessage(roomID, "alice", "The weather is lovely today and we are going for a long walk in the park", time.Now())
	french := domain.NewMessage(roomID, "bob", "Le temps est magnifique aujourd'hui et nous allons faire une longue promenade dans le park", time.Now())
	req.NoError(index.IndexMessage(english))
	req.NoError(index.IndexMessage(french))

	hits, err := index.SearchMessages(ctx, []domain.RoomID{roomID}, ParseMessageQuery("park --lang fr"))

	req.NoError(err)
	req.Equal([]domain.MessageID{french.ID}, hitIDs(hits))
	req.Equal("fr", hits[0].Lang)
}

func TestIndexSink_FollowsMessageLifecycle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)
	sink := NewIndexSink(index, slog.Default())
	roomID := domain.NewRoomID()
	message := domain.NewMessage(roomID, "alice", "draft proposal", time.Now())
	search := func(terms string) []domain.MessageID {
		hits, err := index.SearchMessages(ctx, []domain.RoomID{roomID}, ParseMessageQuery(terms))
		req.NoError(err)
		return hitIDs(hits)
	}

	// Created
	req.NoError(sink.Consume(ctx, event.NewMessageCreated(message)))
	req.Equal([]domain.MessageID{message.ID}, search("proposal"))

	// Updated
	message.Content = "final contract"
	req.NoError(sink.Consume(ctx, event.NewMessageUpdated(message)))
	req.Empty(search("proposal"))
	req.Equal([]domain.MessageID{message.ID}, search("contract"))

	// Deleted
	req.NoError(sink.Consume(ctx, event.NewMessageDeleted(message)))
	req.Empty(search("contract"))

	// Room deleted
	kept := domain.NewMessage(roomID, "bob", "contract signed", time.Now())
	req.NoError(sink.Consume(ctx, event.NewMessageCreated(kept)))
	req.NoError(sink.Consume(ctx, event.RoomDeleted{Room: roomID}))
	req.Empty(search("contract"))

	// Presence is ignored
	req.NoError(sink.Consume(ctx, event.UserJoined{Room: roomID}))
}

func TestIndex_SearchUsers_ByPrefix(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := openIndex(t)
	users := []domain.User{
		{ID: "1", Username: "Alice"},
		{ID: "2", Username: "alicia"},
		{ID: "3", Username: "bob"},
	}
	for _, u := range users {
		req.NoError(index.IndexUser(u))
	}

	found, err := index.SearchUsers(ctx, "ALI", 10)
	req.NoError(err)
	req.Equal([]domain.UserID{"1", "2"}, found)

	// Renaming replaces the document
	req.NoError(index.IndexUser(domain.User{ID: "3", Username: "alison"}))
	found, err = index.SearchUsers(ctx, "ali", 10)
	req.NoError(err)
	req.Equal([]domain.UserID{"1", "2", "3"}, found)

	found, err = index.SearchUsers(ctx, "ali", 1)
	req.NoError(err)
	req.Len(found, 1)

	_, err = index.SearchUsers(ctx, "", 10)
	req.ErrorIs(err, errors.ErrEmptyQuery)
}

func TestParseMessageQuery(t *testing.T) {
	req := require.New(t)

	query := ParseMessageQuery("invoice --lang FR overdue --unknown x")

	req.Equal("invoice overdue", query.Terms)
	req.Equal("fr", query.Lang)
	req.Equal(DefaultLimit, query.Limit)
}
