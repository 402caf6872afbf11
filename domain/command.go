package domain

import (
	"time"
)

// Action names the inbound commands a live connection can send.
type Action string

const (
	ActionSendMessage   Action = "send_message"
	ActionJoinRoom      Action = "join_room"
	ActionLeaveRoom     Action = "leave_room"
	ActionEditMessage   Action = "edit_message"
	ActionDeleteMessage Action = "delete_message"
)

type Command interface {
	Action() Action
}

type SendMessageCommand struct {
	Room      RoomID
	UserID    UserID
	Content   string
	CreatedAt time.Time
}

func (SendMessageCommand) Action() Action { return ActionSendMessage }

type JoinRoomCommand struct {
	Room   RoomID
	UserID UserID
}

func (JoinRoomCommand) Action() Action { return ActionJoinRoom }

type LeaveRoomCommand struct {
	Room   RoomID
	UserID UserID
}

func (LeaveRoomCommand) Action() Action { return ActionLeaveRoom }

type EditMessageCommand struct {
	Message MessageID
	UserID  UserID
	Content string
}

func (EditMessageCommand) Action() Action { return ActionEditMessage }

type DeleteMessageCommand struct {
	Message MessageID
	UserID  UserID
}

func (DeleteMessageCommand) Action() Action { return ActionDeleteMessage }

// GetMessagesCommand asks for a page of history strictly older than Before.
type GetMessagesCommand struct {
	Room   RoomID
	UserID UserID
	Before *MessageID
	Limit  int
}
