package services

import (
	"context"
	"fmt"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"room-chat/repositories"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func messagesOf(sink *recordingSink, eventType event.Type) []event.DomainEvent {
	var res []event.DomainEvent
	for _, e := range sink.received() {
		if e.Type() == eventType {
			res = append(res, e)
		}
	}
	return res
}

func TestChatService_AliceAndBob(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	aliceConn, bobConn := f.connect(t, "alice-1", alice), f.connect(t, "bob-1", bob)

	// Given Alice creates the public room "general" and becomes its admin
	general, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	members, err := f.chat.ListMembers(ctx, alice.UserID, general.ID)
	req.NoError(err)
	req.Len(members, 1)
	req.Equal(domain.RoleAdmin, members[0].Role)
	req.Equal("alice", members[0].Username)

	// And Bob joins as a member
	membership, err := f.chat.JoinRoom(ctx, bob, general.ID)
	req.NoError(err)
	req.Equal(domain.RoleMember, membership.Role)

	// When Bob sends "hi"
	sent, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: general.ID, UserID: bob.UserID, Content: "hi"})
	req.NoError(err)

	// Then both live connections receive the same message_created
	for _, sink := range []*recordingSink{aliceConn, bobConn} {
		created := messagesOf(sink, event.MessageCreatedType)
		req.Len(created, 1)
		payload := created[0].(event.MessageCreated)
		req.Equal(sent.ID, payload.ID)
		req.Equal("hi", payload.Content)
		req.Equal(general.ID, payload.Room)
	}

	// When Bob tries to rename the room
	newName := "random"
	_, err = f.chat.UpdateRoom(ctx, bob.UserID, general.ID, domain.RoomPatch{Name: &newName})

	// Then he is not authorized
	req.ErrorIs(err, errors.ErrAuthorization)
	req.Equal(403, errors.HTTPStatus(err))

	// When Alice renames it
	renamed, err := f.chat.UpdateRoom(ctx, alice.UserID, general.ID, domain.RoomPatch{Name: &newName})
	req.NoError(err)
	req.Equal("random", renamed.Name)

	// Then both connections receive room_updated with the new name
	for _, sink := range []*recordingSink{aliceConn, bobConn} {
		updated := messagesOf(sink, event.RoomUpdatedType)
		req.Len(updated, 1)
		req.Equal(map[string]any{"name": "random"}, updated[0].(event.RoomUpdated).Updates)
	}
}

func TestChatService_JoinTwiceIsConflict(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)

	_, err = f.chat.JoinRoom(ctx, bob, room.ID)
	req.NoError(err)

	// When Bob joins again
	_, err = f.chat.JoinRoom(ctx, bob, room.ID)

	// Then it is a conflict and no duplicate row exists
	req.ErrorIs(err, errors.ErrAlreadyMember)
	req.ErrorIs(err, errors.ErrConflict)
	members, err := f.chat.ListMembers(ctx, bob.UserID, room.ID)
	req.NoError(err)
	req.Len(members, 2)

	// And the creator cannot join its own room either
	_, err = f.chat.JoinRoom(ctx, alice, room.ID)
	req.ErrorIs(err, errors.ErrAlreadyMember)

	// And a missing room is not found
	_, err = f.chat.JoinRoom(ctx, bob, domain.NewRoomID())
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestChatService_EditAndDeletePermissions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	for _, id := range []domain.Identity{bob, carol} {
		_, err = f.chat.JoinRoom(ctx, id, room.ID)
		req.NoError(err)
	}
	message, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: bob.UserID, Content: "first"})
	req.NoError(err)

	// Carol is neither the author nor an admin
	_, err = f.chat.EditMessage(ctx, domain.EditMessageCommand{Message: message.ID, UserID: carol.UserID, Content: "hacked"})
	req.ErrorIs(err, errors.ErrAuthorization)
	err = f.chat.DeleteMessage(ctx, domain.DeleteMessageCommand{Message: message.ID, UserID: carol.UserID})
	req.ErrorIs(err, errors.ErrAuthorization)

	// Alice is admin but not the author: she cannot edit
	_, err = f.chat.EditMessage(ctx, domain.EditMessageCommand{Message: message.ID, UserID: alice.UserID, Content: "edited"})
	req.ErrorIs(err, errors.ErrNotAuthor)

	// Bob is the author
	edited, err := f.chat.EditMessage(ctx, domain.EditMessageCommand{Message: message.ID, UserID: bob.UserID, Content: "edited"})
	req.NoError(err)
	req.Equal("edited", edited.Content)
	req.NotNil(edited.EditedAt)

	// Alice deletes as admin
	req.NoError(f.chat.DeleteMessage(ctx, domain.DeleteMessageCommand{Message: message.ID, UserID: alice.UserID}))
	_, err = f.chat.GetMessage(ctx, bob.UserID, message.ID)
	req.ErrorIs(err, errors.ErrMessageNotFound)

	// Deleting twice is not found
	err = f.chat.DeleteMessage(ctx, domain.DeleteMessageCommand{Message: message.ID, UserID: alice.UserID})
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func TestChatService_SendRequiresRoomAndMembership(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)

	_, err = f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: domain.NewRoomID(), UserID: alice.UserID, Content: "hi"})
	req.ErrorIs(err, errors.ErrRoomNotFound)

	_, err = f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: bob.UserID, Content: "hi"})
	req.ErrorIs(err, errors.ErrNotMember)

	_, err = f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: "   "})
	req.ErrorIs(err, errors.ErrEmptyContent)

	// Nothing has been persisted
	page, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID})
	req.NoError(err)
	req.Empty(page.Messages)
}

func TestChatService_DeleteRoomCascades(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	_, err = f.chat.JoinRoom(ctx, bob, room.ID)
	req.NoError(err)
	bobConn := f.connect(t, "bob-1", bob)

	var ids []domain.MessageID
	for i := 0; i < 3; i++ {
		m, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: bob.UserID, Content: fmt.Sprintf("message %d", i)})
		req.NoError(err)
		ids = append(ids, m.ID)
	}

	// Bob is not an admin
	req.ErrorIs(f.chat.DeleteRoom(ctx, bob.UserID, room.ID), errors.ErrNotAdmin)

	// When Alice deletes the room
	req.NoError(f.chat.DeleteRoom(ctx, alice.UserID, room.ID))

	// Then every message is gone
	for _, id := range ids {
		_, err := f.chat.GetMessage(ctx, alice.UserID, id)
		req.ErrorIs(err, errors.ErrMessageNotFound)
	}
	// And the room has no member left
	req.NoError(f.uow.View(ctx, func(txn repositories.Txn) error {
		members, err := f.chat.rooms.ListMembers(txn, room.ID)
		req.Empty(members)
		return err
	}))
	// And subscribers were told before the room was dropped
	req.Len(messagesOf(bobConn, event.RoomDeletedType), 1)
	req.Empty(f.connections.GetSinksForRoom(room.ID))
	// And the room is not found anymore
	_, err = f.chat.GetRoom(ctx, alice.UserID, room.ID)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestChatService_GetMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	f.chat.WithClock(newStepClock().now)
	alice := f.user(t, "alice")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)

	var sent []domain.Message
	for i := 1; i <= 5; i++ {
		m, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: fmt.Sprintf("M%d", i)})
		req.NoError(err)
		sent = append(sent, m)
	}

	// When the history is read two by two
	page1, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID, Limit: 2})
	req.NoError(err)
	page2, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID, Before: page1.NextBefore, Limit: 2})
	req.NoError(err)
	page3, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID, Before: page2.NextBefore, Limit: 2})
	req.NoError(err)

	// Then pages are newest first without gaps
	req.Equal([]domain.MessageID{sent[4].ID, sent[3].ID}, []domain.MessageID{page1.Messages[0].ID, page1.Messages[1].ID})
	req.Equal([]domain.MessageID{sent[2].ID, sent[1].ID}, []domain.MessageID{page2.Messages[0].ID, page2.Messages[1].ID})
	req.Len(page3.Messages, 1)
	req.Equal(sent[0].ID, page3.Messages[0].ID)
	req.Nil(page3.NextBefore)

	// And the default page holds everything
	all, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID})
	req.NoError(err)
	req.Len(all.Messages, 5)

	// And out of range limits are rejected
	for _, limit := range []int{-1, 101} {
		_, err = f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID, Limit: limit})
		req.ErrorIs(err, errors.ErrInvalidLimit)
	}
}

func TestChatService_PublishOrderFollowsCommitOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	f.chat.WithClock(newStepClock().now)
	alice := f.user(t, "alice")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	sink := f.connect(t, "alice-1", alice)

	// When many messages are sent concurrently
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: fmt.Sprintf("m%d", i)})
			req.NoError(err)
		}(i)
	}
	wg.Wait()

	// Then the live order is the reverse of the newest-first history
	page, err := f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: room.ID, UserID: alice.UserID, Limit: 20})
	req.NoError(err)
	created := messagesOf(sink, event.MessageCreatedType)
	req.Len(created, 20)
	for i, e := range created {
		req.Equal(page.Messages[len(page.Messages)-1-i].ID, e.(event.MessageCreated).ID)
	}
}

func TestChatService_ReadPermissions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	alicePrivateRoom := func(f *fixture) (domain.Identity, domain.Identity, domain.Message) {
		alice, bob := f.user(t, "alice"), f.user(t, "bob")
		room, err := f.chat.CreateRoom(ctx, alice, "secret", domain.VisibilityPrivate)
		req.NoError(err)
		m, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: "psst"})
		req.NoError(err)
		return alice, bob, m
	}

	t.Run("private rooms are hidden from non members", func(t *testing.T) {
		f := newFixture(t, DefaultChatConfig(), false)
		_, bob, m := alicePrivateRoom(f)

		_, err := f.chat.GetRoom(ctx, bob.UserID, m.RoomID)
		req.ErrorIs(err, errors.ErrPrivateRoom)
		_, err = f.chat.GetMessages(ctx, domain.GetMessagesCommand{Room: m.RoomID, UserID: bob.UserID})
		req.ErrorIs(err, errors.ErrAuthorization)
		_, err = f.chat.ListMembers(ctx, bob.UserID, m.RoomID)
		req.ErrorIs(err, errors.ErrAuthorization)
		public, err := f.chat.ListRooms(ctx, bob.UserID, false)
		req.NoError(err)
		req.Empty(public)
	})

	t.Run("reading a message by id is open by default", func(t *testing.T) {
		f := newFixture(t, DefaultChatConfig(), false)
		_, bob, m := alicePrivateRoom(f)

		got, err := f.chat.GetMessage(ctx, bob.UserID, m.ID)
		req.NoError(err)
		req.Equal("psst", got.Content)
	})

	t.Run("strict reads require membership", func(t *testing.T) {
		f := newFixture(t, DefaultChatConfig(), true)
		alice, bob, m := alicePrivateRoom(f)

		_, err := f.chat.GetMessage(ctx, bob.UserID, m.ID)
		req.ErrorIs(err, errors.ErrNotMember)
		_, err = f.chat.GetMessage(ctx, alice.UserID, m.ID)
		req.NoError(err)
	})
}

func TestChatService_LeaveAndRemoveMember(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	bobConn := f.connect(t, "bob-1", bob)

	// Leaving without membership is an authorization error
	req.ErrorIs(f.chat.LeaveRoom(ctx, bob, room.ID), errors.ErrNotMember)

	// Joining subscribes every live connection of Bob
	_, err = f.chat.JoinRoom(ctx, bob, room.ID)
	req.NoError(err)
	req.Len(f.connections.GetSinksForRoom(room.ID), 1)
	req.Len(messagesOf(bobConn, event.UserJoinedType), 1)

	// Leaving unsubscribes them after the event went out
	req.NoError(f.chat.LeaveRoom(ctx, bob, room.ID))
	req.Empty(f.connections.GetSinksForRoom(room.ID))
	req.Len(messagesOf(bobConn, event.UserLeftType), 1)

	// Only an admin removes members
	_, err = f.chat.JoinRoom(ctx, carol, room.ID)
	req.NoError(err)
	req.ErrorIs(f.chat.RemoveMember(ctx, bob.UserID, room.ID, carol.UserID), errors.ErrNotAdmin)
	req.NoError(f.chat.RemoveMember(ctx, alice.UserID, room.ID, carol.UserID))
	members, err := f.chat.ListMembers(ctx, alice.UserID, room.ID)
	req.NoError(err)
	req.Len(members, 1)
}

func TestChatService_Presence(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	_, err = f.chat.JoinRoom(ctx, bob, room.ID)
	req.NoError(err)
	aliceConn := f.connect(t, "alice-1", alice)

	// When Bob opens two connections
	first := f.connect(t, "bob-1", bob)
	second := f.connect(t, "bob-2", bob)

	// Then his presence is announced once, after Alice's own
	joined := messagesOf(aliceConn, event.UserJoinedType)
	req.Len(joined, 2)
	req.Equal(alice.Ref(), joined[0].(event.UserJoined).User)
	req.Equal(bob.Ref(), joined[1].(event.UserJoined).User)
	req.Len(f.connections.GetSinksForRoom(room.ID), 3)

	// When one connection closes, Bob is still online
	f.chat.Disconnect(ctx, "bob-1", bob)
	req.Empty(messagesOf(aliceConn, event.UserLeftType))
	req.True(f.connections.IsOnline(bob.UserID))

	// When the last one closes, the room learns he left
	f.chat.Disconnect(ctx, "bob-2", bob)
	left := messagesOf(aliceConn, event.UserLeftType)
	req.Len(left, 1)
	req.Equal(bob.Ref(), left[0].(event.UserLeft).User)
	req.Len(f.connections.GetSinksForRoom(room.ID), 1)
	req.Empty(messagesOf(first, event.UserLeftType))
	req.Empty(messagesOf(second, event.UserLeftType))
}

func TestChatService_PresenceDisabled(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	cfg := DefaultChatConfig()
	cfg.PresenceOnConnect = false
	f := newFixture(t, cfg, false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	_, err = f.chat.JoinRoom(ctx, bob, room.ID)
	req.NoError(err)
	aliceConn := f.connect(t, "alice-1", alice)

	f.connect(t, "bob-1", bob)
	f.chat.Disconnect(ctx, "bob-1", bob)

	req.Empty(aliceConn.received())
}

type fakeCensor struct{}

func (fakeCensor) Censor(content string) (string, []string) {
	if content == "you rutabaga" {
		return "you ********", []string{"rutabaga"}
	}
	return content, nil
}

func TestChatService_Moderation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	f.chat.WithModeration(fakeCensor{}, f.telemetry)
	alice := f.user(t, "alice")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)

	// When a message contains a forbidden word
	m, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: "you rutabaga"})
	req.NoError(err)

	// Then it is stored censored
	stored, err := f.chat.GetMessage(ctx, alice.UserID, m.ID)
	req.NoError(err)
	req.Equal("you ********", stored.Content)

	// And the hit reaches telemetry
	var hits []event.Censored
	for len(f.telemetry) > 0 {
		if e := <-f.telemetry; e.Type == event.CensorshipHitType {
			hits = append(hits, e.Payload.(event.Censored))
		}
	}
	req.Equal([]event.Censored{{Room: room.ID, Words: []string{"rutabaga"}}}, hits)
}

func TestChatService_SearchMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	secret, err := f.chat.CreateRoom(ctx, alice, "secret", domain.VisibilityPrivate)
	req.NoError(err)

	invoice, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: "the invoice is ready"})
	req.NoError(err)
	_, err = f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: secret.ID, UserID: alice.UserID, Content: "the secret invoice"})
	req.NoError(err)

	// When Bob searches the public room
	found, err := f.chat.SearchMessages(ctx, bob.UserID, room.ID, "invoice", 0)

	// Then only the message of that room is found
	req.NoError(err)
	req.Len(found, 1)
	req.Equal(invoice.ID, found[0].ID)

	// And the private room is off limits
	_, err = f.chat.SearchMessages(ctx, bob.UserID, secret.ID, "invoice", 0)
	req.ErrorIs(err, errors.ErrPrivateRoom)

	// And a deleted message is no longer found
	req.NoError(f.chat.DeleteMessage(ctx, domain.DeleteMessageCommand{Message: invoice.ID, UserID: alice.UserID}))
	found, err = f.chat.SearchMessages(ctx, bob.UserID, room.ID, "invoice", 0)
	req.NoError(err)
	req.Empty(found)

	// And an empty query is a validation error
	_, err = f.chat.SearchMessages(ctx, bob.UserID, room.ID, "  ", 0)
	req.ErrorIs(err, errors.ErrValidation)
}

func TestChatService_ReindexMessages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, DefaultChatConfig(), false)
	alice := f.user(t, "alice")
	room, err := f.chat.CreateRoom(ctx, alice, "general", domain.VisibilityPublic)
	req.NoError(err)
	m, err := f.chat.SendMessage(ctx, domain.SendMessageCommand{Room: room.ID, UserID: alice.UserID, Content: "reindexed content"})
	req.NoError(err)
	req.NoError(f.index.DeleteMessages(m.ID))

	count, err := f.chat.ReindexMessages(ctx)

	req.NoError(err)
	req.Equal(1, count)
	found, err := f.chat.SearchMessages(ctx, alice.UserID, room.ID, "reindexed", 0)
	req.NoError(err)
	req.Len(found, 1)
}
