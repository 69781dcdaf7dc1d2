// Command livechat is a terminal visitor client for the support chat. It
// starts (or resumes) a session, prints new messages as the poll picks them
// up and sends every line typed on stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"agency-portfolio-backend/internal/apiclient"
	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/logger"
	"agency-portfolio-backend/internal/models"
)

func main() {
	app := &cli.App{
		Name:  "livechat",
		Usage: "chat with the agency from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "API base URL",
				EnvVars: []string{"LIVECHAT_SERVER"},
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "display name for a guest session",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "guest session id to resume",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "access token of a signed-in account",
				EnvVars: []string{"LIVECHAT_TOKEN"},
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: chat.DefaultPollInterval,
				Usage: "poll interval",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: run,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "ask the sales assistant one question",
				ArgsUsage: "<question>",
				Action:    ask,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	l := logger.Setup(c.String("log-level"), "development")

	token := c.String("token")
	name := c.String("name")
	if token == "" && strings.TrimSpace(name) == "" {
		return cli.Exit("a guest needs --name (or pass --token to chat as a signed-in user)", 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewClient(c.String("server"), token)
	conv := chat.NewConversation(resumable{Client: client, sessionID: c.String("session")})

	var mu sync.Mutex
	printed := 0
	conv.OnChange(func(s models.ChatSession) {
		mu.Lock()
		defer mu.Unlock()
		for _, m := range s.Messages[min(printed, len(s.Messages)):] {
			printMessage(m)
		}
		printed = len(s.Messages)
	})

	if err := conv.Start(ctx, name); err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	conv.Open()
	if s := conv.Session(); s != nil {
		fmt.Printf("-- session %s (Ctrl+C to leave)\n", s.ID)
	}

	go conv.Run(ctx, c.Duration("interval"), func(err error) {
		l.Warn().Err(err).Msg("poll failed")
	})

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			conv.SetDraft(line)
			if err := conv.Send(ctx); err != nil {
				l.Error().Err(err).Msg("send failed, draft kept")
			}
		}
	}
}

func ask(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return cli.Exit("usage: livechat ask <question>", 2)
	}
	reply, err := apiclient.NewClient(c.String("server"), c.String("token")).Reply(c.Context, question)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}

// resumable injects a --session id into the first Start.
type resumable struct {
	*apiclient.Client
	sessionID string
}

func (r resumable) Start(ctx context.Context, guestName, sessionID string) (*models.ChatSession, error) {
	if sessionID == "" {
		sessionID = r.sessionID
	}
	return r.Client.Start(ctx, guestName, sessionID)
}

func printMessage(m models.ChatMessage) {
	who := m.Sender.String()
	if m.UserName != "" {
		who = m.UserName
	}
	ts := time.UnixMilli(m.Timestamp).Format("15:04")
	fmt.Printf("[%s] %s: %s\n", ts, who, m.Text)
}
