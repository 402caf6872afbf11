package ws

import (
	"encoding/json"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
)

const errorEvent = "error"

// inbound is the JSON envelope of a client command.
type inbound struct {
	Event     domain.Action `json:"event"`
	RoomID    string        `json:"room_id,omitempty"`
	MessageID string        `json:"message_id,omitempty"`
	Content   string        `json:"content,omitempty"`
}

// outbound is the JSON envelope of a server event.
type outbound struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

func encodeEvent(e event.DomainEvent) ([]byte, error) {
	return json.Marshal(outbound{Event: string(e.Type()), Payload: e})
}

func encodeError(err error, action domain.Action) ([]byte, error) {
	body := errors.ToBody(err)
	body.Action = string(action)
	return json.Marshal(outbound{Event: errorEvent, Payload: body})
}

// decodeCommand turns a raw frame into a typed command of the identity.
func decodeCommand(raw []byte, identity domain.Identity) (domain.Command, domain.Action, error) {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, "", errors.ErrMalformedPayload
	}
	switch in.Event {
	case domain.ActionSendMessage:
		roomID, err := domain.ParseRoomID(in.RoomID)
		if err != nil {
			return nil, in.Event, err
		}
		return domain.SendMessageCommand{Room: roomID, UserID: identity.UserID, Content: in.Content}, in.Event, nil
	case domain.ActionJoinRoom:
		roomID, err := domain.ParseRoomID(in.RoomID)
		if err != nil {
			return nil, in.Event, err
		}
		return domain.JoinRoomCommand{Room: roomID, UserID: identity.UserID}, in.Event, nil
	case domain.ActionLeaveRoom:
		roomID, err := domain.ParseRoomID(in.RoomID)
		if err != nil {
			return nil, in.Event, err
		}
		return domain.LeaveRoomCommand{Room: roomID, UserID: identity.UserID}, in.Event, nil
	case domain.ActionEditMessage:
		messageID, err := domain.ParseMessageID(in.MessageID)
		if err != nil {
			return nil, in.Event, err
		}
		return domain.EditMessageCommand{Message: messageID, UserID: identity.UserID, Content: in.Content}, in.Event, nil
	case domain.ActionDeleteMessage:
		messageID, err := domain.ParseMessageID(in.MessageID)
		if err != nil {
			return nil, in.Event, err
		}
		return domain.DeleteMessageCommand{Message: messageID, UserID: identity.UserID}, in.Event, nil
	default:
		return nil, in.Event, errors.ErrUnknownAction
	}
}
