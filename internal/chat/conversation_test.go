package chat_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-portfolio-backend/internal/chat"
	"agency-portfolio-backend/internal/models"
)

type failingSend struct {
	chat.LocalTransport
	err error
}

func (f failingSend) Send(context.Context, string, string) (*models.ChatSession, error) {
	return nil, f.err
}

type countingFetch struct {
	chat.LocalTransport
	calls *atomic.Int32
}

func (c countingFetch) Fetch(ctx context.Context, id string) (*models.ChatSession, error) {
	c.calls.Add(1)
	return c.LocalTransport.Fetch(ctx, id)
}

func TestConversation_Lifecycle(t *testing.T) {
	svc, _ := newChat(t)
	ctx := context.Background()
	conv := chat.NewConversation(chat.LocalTransport{Service: svc})

	assert.Equal(t, chat.StateNoSession, conv.State())
	assert.Nil(t, conv.Session())

	var changes int
	conv.OnChange(func(models.ChatSession) { changes++ })

	require.NoError(t, conv.Start(ctx, "Ana"))
	assert.Equal(t, chat.StateActive, conv.State())

	conv.SetDraft("necesito una web")
	require.NoError(t, conv.Send(ctx))
	assert.Empty(t, conv.Draft())

	s := conv.Session()
	require.Len(t, s.Messages, 2)
	assert.Equal(t, models.SenderVisitor, s.Messages[1].Sender)
	assert.Equal(t, "Ana", s.Messages[1].UserName)
	assert.Equal(t, 2, changes)
}

func TestConversation_BlankDraftAndNoSessionAreNoops(t *testing.T) {
	svc, _ := newChat(t)
	ctx := context.Background()
	conv := chat.NewConversation(chat.LocalTransport{Service: svc})

	conv.SetDraft("hola")
	require.NoError(t, conv.Send(ctx))
	assert.Equal(t, "hola", conv.Draft())

	require.NoError(t, conv.Start(ctx, "Ana"))
	conv.SetDraft("   ")
	require.NoError(t, conv.Send(ctx))
	assert.Len(t, conv.Session().Messages, 1)
}

func TestConversation_FailedSendKeepsDraft(t *testing.T) {
	svc, _ := newChat(t)
	ctx := context.Background()
	boom := errors.New("network down")
	conv := chat.NewConversation(failingSend{LocalTransport: chat.LocalTransport{Service: svc}, err: boom})

	require.NoError(t, conv.Start(ctx, "Ana"))
	conv.SetDraft("hola")

	assert.ErrorIs(t, conv.Send(ctx), boom)
	assert.Equal(t, "hola", conv.Draft())
	assert.Len(t, conv.Session().Messages, 1)
}

func TestConversation_PollUnread(t *testing.T) {
	svc, _ := newChat(t)
	ctx := context.Background()
	conv := chat.NewConversation(chat.LocalTransport{Service: svc})
	require.NoError(t, conv.Start(ctx, "Ana"))
	id := conv.Session().ID

	grew, err := conv.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, grew)

	_, err = svc.Send(ctx, id, models.ChatMessage{Sender: models.SenderAdmin, Text: "hola Ana"})
	require.NoError(t, err)

	grew, err = conv.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, grew)
	assert.Equal(t, 1, conv.Unread())

	conv.Open()
	assert.True(t, conv.IsOpen())
	assert.Zero(t, conv.Unread())

	_, err = svc.Send(ctx, id, models.ChatMessage{Sender: models.SenderAdmin, Text: "¿sigues ahí?"})
	require.NoError(t, err)
	_, err = conv.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, conv.Unread())

	conv.Close()
	// Visitor's own message from another tab does not count as unread.
	_, err = svc.Send(ctx, id, models.ChatMessage{Sender: models.SenderVisitor, Text: "sí"})
	require.NoError(t, err)
	_, err = conv.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, conv.Unread())
	assert.Len(t, conv.Session().Messages, 4)
}

func TestConversation_PollBeforeStart(t *testing.T) {
	svc, _ := newChat(t)
	conv := chat.NewConversation(chat.LocalTransport{Service: svc})

	grew, err := conv.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, grew)
}

func TestConversation_RunStopsOnCancel(t *testing.T) {
	svc, _ := newChat(t)
	calls := &atomic.Int32{}
	conv := chat.NewConversation(countingFetch{LocalTransport: chat.LocalTransport{Service: svc}, calls: calls})
	require.NoError(t, conv.Start(context.Background(), "Ana"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conv.Run(ctx, 5*time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
