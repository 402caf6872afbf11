package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"room-chat/domain"
	"room-chat/errors"
	"room-chat/services"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders the error envelope. Only unexpected failures are logged
// with their cause; the client never sees it.
func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	body := errors.ToBody(err)
	if body.Status >= http.StatusInternalServerError {
		log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, body.Status, body)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.ErrMalformedPayload
	}
	return nil
}

type tokenResponse struct {
	Token string           `json:"token"`
	User  services.Profile `json:"user"`
}

type roomResponse struct {
	ID         domain.RoomID     `json:"id"`
	Name       string            `json:"name"`
	Visibility domain.Visibility `json:"visibility"`
	CreatedAt  time.Time         `json:"created_at"`
}

func newRoomResponse(r domain.Room) roomResponse {
	return roomResponse{ID: r.ID, Name: r.Name, Visibility: r.Visibility, CreatedAt: r.CreatedAt}
}

type membershipResponse struct {
	UserID   domain.UserID `json:"user_id"`
	RoomID   domain.RoomID `json:"room_id"`
	Role     domain.Role   `json:"role"`
	JoinedAt time.Time     `json:"joined_at"`
}

func newMembershipResponse(m domain.Membership) membershipResponse {
	return membershipResponse{UserID: m.UserID, RoomID: m.RoomID, Role: m.Role, JoinedAt: m.JoinedAt}
}

type memberResponse struct {
	membershipResponse
	Username string `json:"username"`
}

type messageResponse struct {
	ID       domain.MessageID `json:"id"`
	RoomID   domain.RoomID    `json:"room_id"`
	AuthorID domain.UserID    `json:"author_id"`
	Content  string           `json:"content"`
	SentAt   time.Time        `json:"sent_at"`
	EditedAt *time.Time       `json:"edited_at,omitempty"`
}

func newMessageResponse(m domain.Message) messageResponse {
	return messageResponse{ID: m.ID, RoomID: m.RoomID, AuthorID: m.AuthorID, Content: m.Content, SentAt: m.SentAt, EditedAt: m.EditedAt}
}

type messagePageResponse struct {
	Messages   []messageResponse `json:"messages"`
	NextBefore *domain.MessageID `json:"next_before,omitempty"`
}
