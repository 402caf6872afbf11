package ws

import (
	"context"
	"log/slog"
	"room-chat/contract"
	"room-chat/domain"
	"room-chat/domain/event"
	"room-chat/errors"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// CommandHandler executes one inbound command for the connection owner.
type CommandHandler func(ctx context.Context, cmd domain.Command) error

// Connection is one live websocket session. It is the sink registered in the
// connection manager: events reach the socket through a bounded buffer.
type Connection struct {
	id        contract.ConnectionID
	identity  domain.Identity
	conn      *websocket.Conn
	send      chan []byte
	onCommand CommandHandler
	onResult  func(action domain.Action, err error)
	heartbeat Heartbeat

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	log       *slog.Logger
}

type Heartbeat struct {
	Interval time.Duration
	Timeout  time.Duration
}

func NewConnection(ctx context.Context, log *slog.Logger, id contract.ConnectionID, identity domain.Identity,
	conn *websocket.Conn, bufferSize int, heartbeat Heartbeat, onCommand CommandHandler) *Connection {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Connection{
		id:        id,
		identity:  identity,
		conn:      conn,
		send:      make(chan []byte, bufferSize),
		onCommand: onCommand,
		onResult:  func(domain.Action, error) {},
		heartbeat: heartbeat,
		ctx:       ctx,
		cancel:    cancel,
		log:       log.With("conn_id", id, "user_id", identity.UserID),
	}
}

func (c *Connection) ID() contract.ConnectionID { return c.id }

// Consume enqueues an event for the writer. A full buffer blocks until the
// broadcaster deadline; a closed connection refuses the event.
func (c *Connection) Consume(ctx context.Context, e event.DomainEvent) error {
	msg, err := encodeEvent(e)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, msg)
}

func (c *Connection) enqueue(ctx context.Context, msg []byte) error {
	select {
	case <-c.ctx.Done():
		return errors.ErrConnectionClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return errors.ErrConnectionClosed
	case <-ctx.Done():
		return errors.ErrSinkBufferOverflow
	}
}

// Run starts the writer and the heartbeat, then reads until the peer goes away.
// It returns once every goroutine of the connection is done.
func (c *Connection) Run() {
	c.wg.Add(2)
	go c.writePump()
	go c.pingPump()
	c.readPump()
	c.Close()
	c.wg.Wait()
}

// readPump processes the commands strictly in arrival order.
func (c *Connection) readPump() {
	for {
		_, raw, err := c.conn.Read(c.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || c.ctx.Err() != nil {
				c.log.Debug("Connection closed by peer")
			} else {
				c.log.Warn("Read failed", "error", err)
			}
			return
		}

		cmd, action, err := decodeCommand(raw, c.identity)
		if err == nil {
			err = c.onCommand(c.ctx, cmd)
		}
		c.onResult(action, err)
		if err != nil {
			c.reportError(err, action)
		}
	}
}

func (c *Connection) reportError(err error, action domain.Action) {
	if errors.HTTPStatus(err) >= 500 {
		c.log.Error("Command failed", "action", action, "error", err)
	} else {
		c.log.Debug("Command rejected", "action", action, "error", err)
	}
	msg, encErr := encodeError(err, action)
	if encErr != nil {
		c.log.Error("Unable to encode error", "error", encErr)
		return
	}
	if err := c.enqueue(c.ctx, msg); err != nil {
		c.log.Debug("Error not delivered", "error", err)
	}
}

func (c *Connection) writePump() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.send:
			if err := c.conn.Write(c.ctx, websocket.MessageText, msg); err != nil {
				c.log.Debug("Write failed", "error", err)
				c.Close()
				return
			}
		}
	}
}

// pingPump closes the connection when a pong does not come back in time.
func (c *Connection) pingPump() {
	defer c.wg.Done()
	if c.heartbeat.Interval <= 0 {
		<-c.ctx.Done()
		return
	}
	ticker := time.NewTicker(c.heartbeat.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, c.heartbeat.Timeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.log.Info("Heartbeat missed, closing connection", "error", err)
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := c.conn.Close(websocket.StatusNormalClosure, ""); err != nil {
			c.log.Debug("Close handshake failed", "error", err)
		}
	})
}

// OnResult registers a hook called after every inbound command.
func (c *Connection) OnResult(fn func(action domain.Action, err error)) *Connection {
	c.onResult = fn
	return c
}
