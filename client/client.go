// Package client talks to a room-chat server over its HTTP API and websocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// APIError is a non 2xx answer of the server.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
}

type Member struct {
	UserID   string    `json:"user_id"`
	RoomID   string    `json:"room_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
	Username string    `json:"username,omitempty"`
}

type Message struct {
	ID       string     `json:"id"`
	RoomID   string     `json:"room_id"`
	AuthorID string     `json:"author_id"`
	Content  string     `json:"content"`
	SentAt   time.Time  `json:"sent_at"`
	EditedAt *time.Time `json:"edited_at,omitempty"`
}

type MessagePage struct {
	Messages   []Message `json:"messages"`
	NextBefore *string   `json:"next_before,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy of the client acting as the bearer of token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, username, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{"username": username, "password": password}, &s)
	return s, err
}

func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, &s)
	return s, err
}

func (c *Client) Me(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &p)
	return p, err
}

func (c *Client) CreateRoom(ctx context.Context, name, visibility string) (Room, error) {
	var r Room
	err := c.do(ctx, http.MethodPost, "/api/rooms", map[string]string{"name": name, "visibility": visibility}, &r)
	return r, err
}

func (c *Client) ListRooms(ctx context.Context, mine bool) ([]Room, error) {
	var rooms []Room
	err := c.do(ctx, http.MethodGet, "/api/rooms?mine="+strconv.FormatBool(mine), nil, &rooms)
	return rooms, err
}

func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodDelete, "/api/rooms/"+roomID, nil, nil)
}

func (c *Client) JoinRoom(ctx context.Context, roomID string) (Member, error) {
	var m Member
	err := c.do(ctx, http.MethodPost, "/api/rooms/"+roomID+"/join", nil, &m)
	return m, err
}

func (c *Client) LeaveRoom(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodPost, "/api/rooms/"+roomID+"/leave", nil, nil)
}

func (c *Client) Members(ctx context.Context, roomID string) ([]Member, error) {
	var members []Member
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+roomID+"/members", nil, &members)
	return members, err
}

func (c *Client) SendMessage(ctx context.Context, roomID, content string) (Message, error) {
	var m Message
	err := c.do(ctx, http.MethodPost, "/api/rooms/"+roomID+"/messages", map[string]string{"content": content}, &m)
	return m, err
}

// Messages returns a page of history older than before, newest first.
func (c *Client) Messages(ctx context.Context, roomID, before string, limit int) (MessagePage, error) {
	query := url.Values{}
	if before != "" {
		query.Set("before", before)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/rooms/" + roomID + "/messages"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var page MessagePage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) SearchMessages(ctx context.Context, roomID, q string) ([]Message, error) {
	var messages []Message
	err := c.do(ctx, http.MethodGet, "/api/rooms/"+roomID+"/messages/search?q="+url.QueryEscape(q), nil, &messages)
	return messages, err
}

// Command is an inbound websocket envelope.
type Command struct {
	Event     string `json:"event"`
	RoomID    string `json:"room_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// Event is an outbound websocket envelope, the payload is decoded on demand.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (e Event) Decode(v any) error { return json.Unmarshal(e.Payload, v) }

type Stream struct {
	conn *websocket.Conn
}

// Dial opens the live connection of the bearer.
func (c *Client) Dial(ctx context.Context) (*Stream, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.token}},
	})
	if err != nil {
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

func (s *Stream) Send(ctx context.Context, cmd Command) error {
	return wsjson.Write(ctx, s.conn, cmd)
}

func (s *Stream) Next(ctx context.Context) (Event, error) {
	var e Event
	err := wsjson.Read(ctx, s.conn, &e)
	return e, err
}

func (s *Stream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
