package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	args := m.Called(ctx, system, prompt)
	return args.String(0), args.Error(1)
}

func TestAsk_ForwardsPrompt(t *testing.T) {
	t.Parallel()
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, SystemInstruction, "best heist movie?").Return("Heat (1995).", nil).Once()

	a := New(gen, DefaultConfig(0))
	got, err := a.Ask(context.Background(), "  best heist movie?  ")
	require.NoError(t, err)
	assert.Equal(t, "Heat (1995).", got)
	gen.AssertExpectations(t)
}

func TestAsk_EmptyPromptUsesDefault(t *testing.T) {
	t.Parallel()
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, SystemInstruction, DefaultPrompt).Return("Sure!", nil).Once()

	a := New(gen, DefaultConfig(0))
	_, err := a.Ask(context.Background(), "")
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestAsk_RateLimited(t *testing.T) {
	t.Parallel()
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)

	a := New(gen, DefaultConfig(1))
	_, err := a.Ask(context.Background(), "one")
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), "two")
	assert.ErrorIs(t, err, ErrRateLimited)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestAsk_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("upstream 503"))

	a := New(gen, Config{FailureThreshold: 2, OpenTimeout: time.Minute, Timeout: time.Second})
	for i := 0; i < 2; i++ {
		_, err := a.Ask(context.Background(), "hi")
		require.Error(t, err)
	}

	_, err := a.Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestAsk_Unconfigured(t *testing.T) {
	t.Parallel()
	a := New(nil, DefaultConfig(0))
	_, err := a.Ask(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
