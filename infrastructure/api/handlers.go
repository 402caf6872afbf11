//go:generate go run go.uber.org/mock/mockgen -source=handlers.go -destination=../../mocks/mock_api.go -package=mocks
package api

import (
	"context"
	"log/slog"
	"net/http"
	"room-chat/auth"
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/services"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type AuthAPI interface {
	Register(ctx context.Context, req auth.RegisterRequest) (services.Token, services.Profile, error)
	Login(ctx context.Context, req auth.LoginRequest) (services.Token, services.Profile, error)
	Verify(ctx context.Context, credential string) (domain.Identity, error)
	Me(ctx context.Context, identity domain.Identity) (services.Profile, error)
	UpdateMe(ctx context.Context, identity domain.Identity, req auth.UpdateMeRequest) (services.Profile, *services.Token, error)
	GetUser(ctx context.Context, userID domain.UserID) (domain.User, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]services.Profile, error)
}

type ChatAPI interface {
	CreateRoom(ctx context.Context, identity domain.Identity, name string, visibility domain.Visibility) (domain.Room, error)
	GetRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (domain.Room, error)
	ListRooms(ctx context.Context, userID domain.UserID, mine bool) ([]domain.Room, error)
	ListMembers(ctx context.Context, userID domain.UserID, roomID domain.RoomID) ([]domain.Member, error)
	UpdateRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID, patch domain.RoomPatch) (domain.Room, error)
	DeleteRoom(ctx context.Context, userID domain.UserID, roomID domain.RoomID) error
	JoinRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) (domain.Membership, error)
	LeaveRoom(ctx context.Context, identity domain.Identity, roomID domain.RoomID) error
	RemoveMember(ctx context.Context, adminID domain.UserID, roomID domain.RoomID, memberID domain.UserID) error
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	GetMessage(ctx context.Context, userID domain.UserID, id domain.MessageID) (domain.Message, error)
	EditMessage(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	DeleteMessage(ctx context.Context, cmd domain.DeleteMessageCommand) error
	GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) (services.MessagePage, error)
	SearchMessages(ctx context.Context, userID domain.UserID, roomID domain.RoomID, rawQuery string, limit int) ([]domain.Message, error)
}

type handlers struct {
	log  *slog.Logger
	auth AuthAPI
	chat ChatAPI
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(h.log, w, r, err)
}

// identity is always present behind Authenticate.
func identity(r *http.Request) domain.Identity {
	id, _ := IdentityFrom(r.Context())
	return id
}

func roomParam(r *http.Request) (domain.RoomID, error) {
	return domain.ParseRoomID(chi.URLParam(r, "id"))
}

func messageParam(r *http.Request) (domain.MessageID, error) {
	return domain.ParseMessageID(chi.URLParam(r, "id"))
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ErrInvalidLimit
	}
	return limit, nil
}

// Accounts

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	token, profile, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token.String(), User: profile})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	token, profile, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token.String(), User: profile})
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID    domain.UserID `json:"user_id"`
	Username  string        `json:"username"`
	ExpiresAt string        `json:"expires_at"`
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Token == "" {
		h.fail(w, r, errors.ErrMissingToken)
		return
	}
	id, err := h.auth.Verify(r.Context(), req.Token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		UserID:    id.UserID,
		Username:  id.Username,
		ExpiresAt: id.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.auth.Me(r.Context(), identity(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateMeResponse struct {
	User  services.Profile `json:"user"`
	Token string           `json:"token,omitempty"`
}

func (h *handlers) updateMe(w http.ResponseWriter, r *http.Request) {
	var req auth.UpdateMeRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	profile, token, err := h.auth.UpdateMe(r.Context(), identity(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := updateMeResponse{User: profile}
	if token != nil {
		resp.Token = token.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.GetUser(r.Context(), domain.UserID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services.NewProfile(user))
}

func (h *handlers) searchUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profiles, err := h.auth.SearchUsers(r.Context(), r.URL.Query().Get("query"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Rooms

type createRoomRequest struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
}

func (h *handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Visibility == "" {
		req.Visibility = string(domain.VisibilityPublic)
	}
	visibility, err := domain.ParseVisibility(req.Visibility)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	room, err := h.chat.CreateRoom(r.Context(), identity(r), req.Name, visibility)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRoomResponse(room))
}

func (h *handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))
	rooms, err := h.chat.ListRooms(r.Context(), identity(r).UserID, mine)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(rooms, func(room domain.Room, _ int) roomResponse {
		return newRoomResponse(room)
	}))
}

func (h *handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	room, err := h.chat.GetRoom(r.Context(), identity(r).UserID, roomID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomResponse(room))
}

type updateRoomRequest struct {
	Name       *string `json:"name"`
	Visibility *string `json:"visibility"`
}

func (h *handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req updateRoomRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	patch := domain.RoomPatch{Name: req.Name}
	if req.Visibility != nil {
		visibility, err := domain.ParseVisibility(*req.Visibility)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		patch.Visibility = &visibility
	}
	room, err := h.chat.UpdateRoom(r.Context(), identity(r).UserID, roomID, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoomResponse(room))
}

func (h *handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.chat.DeleteRoom(r.Context(), identity(r).UserID, roomID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	membership, err := h.chat.JoinRoom(r.Context(), identity(r), roomID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMembershipResponse(membership))
}

func (h *handlers) leaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.chat.LeaveRoom(r.Context(), identity(r), roomID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listMembers(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	members, err := h.chat.ListMembers(r.Context(), identity(r).UserID, roomID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(members, func(m domain.Member, _ int) memberResponse {
		return memberResponse{membershipResponse: newMembershipResponse(m.Membership), Username: m.Username}
	}))
}

func (h *handlers) removeMember(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	memberID := domain.UserID(chi.URLParam(r, "userID"))
	if err := h.chat.RemoveMember(r.Context(), identity(r).UserID, roomID, memberID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages

type contentRequest struct {
	Content string `json:"content"`
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	message, err := h.chat.SendMessage(r.Context(), domain.SendMessageCommand{
		Room: roomID, UserID: identity(r).UserID, Content: req.Content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMessageResponse(message))
}

func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cmd := domain.GetMessagesCommand{Room: roomID, UserID: identity(r).UserID, Limit: limit}
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err := domain.ParseMessageID(raw)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		cmd.Before = &before
	}
	page, err := h.chat.GetMessages(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagePageResponse{
		Messages:   lo.Map(page.Messages, func(m domain.Message, _ int) messageResponse { return newMessageResponse(m) }),
		NextBefore: page.NextBefore,
	})
}

func (h *handlers) searchMessages(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := limitParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	query := r.URL.Query().Get("q")
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" && strings.TrimSpace(query) != "" {
		query += " --lang " + lang
	}
	messages, err := h.chat.SearchMessages(r.Context(), identity(r).UserID, roomID, query, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lo.Map(messages, func(m domain.Message, _ int) messageResponse { return newMessageResponse(m) }))
}

func (h *handlers) getMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := messageParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	message, err := h.chat.GetMessage(r.Context(), identity(r).UserID, messageID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessageResponse(message))
}

func (h *handlers) editMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := messageParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	message, err := h.chat.EditMessage(r.Context(), domain.EditMessageCommand{
		Message: messageID, UserID: identity(r).UserID, Content: req.Content,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessageResponse(message))
}

func (h *handlers) deleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := messageParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.chat.DeleteMessage(r.Context(), domain.DeleteMessageCommand{Message: messageID, UserID: identity(r).UserID}); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
