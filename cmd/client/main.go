package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"room-chat/client"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	Username  string `env:"CHAT_USERNAME,required=true"`
	Password  string `env:"CHAT_PASSWORD,required=true"`
	RoomID    string `env:"CHAT_ROOM_ID,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run logs in, prints the events of the room and sends every stdin line to it.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(config.ServerURL, nil)
	session, err := c.Login(ctx, config.Username, config.Password)
	if err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}
	c = c.WithToken(session.Token)

	stream, err := c.Dial(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = stream.Close()
	}()
	timeline := client.NewTimeline(config.RoomID)
	if page, err := c.Messages(ctx, config.RoomID, "", 50); err == nil {
		timeline.Seed(page.Messages)
		for _, m := range timeline.Messages() {
			printMessage(m)
		}
	} else {
		log.Warn("Could not load history", "error", err)
	}
	log.Info("Connected, type a message and press enter (Ctrl+C to quit)", "room_id", config.RoomID)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := stream.Send(ctx, client.Command{Event: "send_message", RoomID: config.RoomID, Content: scanner.Text()}); err != nil {
				log.Warn("Send failed", "error", err)
				return
			}
		}
	}()

	for {
		e, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("stream error: %w", err)
		}
		changed, err := timeline.Apply(e)
		if err != nil {
			log.Warn("Unreadable event", "event", e.Type, "error", err)
			continue
		}
		switch {
		case e.Type == "message_created" && changed:
			var m client.Message
			if err := e.Decode(&m); err == nil {
				printMessage(m)
			}
		case e.Type == "room_deleted" && timeline.Deleted():
			fmt.Println("<room deleted>")
			return exitOK, nil
		default:
			fmt.Printf("<%s> %s\n", e.Type, string(e.Payload))
		}
	}
}

func printMessage(m client.Message) {
	fmt.Printf("[%s] %s: %s\n", m.SentAt.Local().Format(time.TimeOnly), m.AuthorID, m.Content)
}
