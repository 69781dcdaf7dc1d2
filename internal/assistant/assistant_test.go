package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"agency-portfolio-backend/internal/assistant"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	args := m.Called(ctx, systemInstruction, prompt)
	return args.String(0), args.Error(1)
}

func TestReply_NoKey(t *testing.T) {
	a := assistant.New(nil, zerolog.Nop())
	assert.Equal(t, assistant.ReplyMissingKey, a.Reply(context.Background(), "hola", ""))
}

func TestReply_ProviderFailure(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, "precio?").Return("", errors.New("403 forbidden"))

	a := assistant.New(gen, zerolog.Nop())
	assert.Equal(t, assistant.ReplyFailure, a.Reply(context.Background(), "precio?", ""))
	gen.AssertExpectations(t)
}

func TestReply_EmptyText(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, "hola").Return("  ", nil)

	a := assistant.New(gen, zerolog.Nop())
	assert.Equal(t, assistant.ReplyEmpty, a.Reply(context.Background(), "hola", ""))
}

func TestReply_EmbedsCatalogue(t *testing.T) {
	summary := "- Shop (Web): store. Stack: Go, React"
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(sys string) bool {
		return assert.ObjectsAreEqual(assistant.SystemInstruction(summary), sys)
	}), "¿Qué hacen?").Return("Construimos tiendas.", nil)

	a := assistant.New(gen, zerolog.Nop())
	assert.Equal(t, "Construimos tiendas.", a.Reply(context.Background(), "¿Qué hacen?", summary))
	gen.AssertExpectations(t)
}

func TestReply_UsesCallerDeadline(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return !ok
	}), mock.Anything, "hola").Return("Hola.", nil)

	a := assistant.New(gen, zerolog.Nop())
	assert.Equal(t, "Hola.", a.Reply(context.Background(), "hola", ""))
	gen.AssertExpectations(t)
}

func TestSystemInstruction(t *testing.T) {
	sys := assistant.SystemInstruction("- Shop (Web): store. Stack: Go")
	assert.Contains(t, sys, "Nova")
	assert.Contains(t, sys, "Máximo 3 oraciones")
	assert.Contains(t, sys, "- Shop (Web): store. Stack: Go")
	assert.Contains(t, sys, "+54 9 11 6959-5853")
}
