// Package assistant forwards chat prompts to a generative text model behind
// a rate limiter and a circuit breaker.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelroom/internal/observability"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// DefaultPrompt is sent when the caller supplies an empty prompt.
const DefaultPrompt = "Ask me something"

// SystemInstruction frames every conversation.
const SystemInstruction = "You are the movie, series and anime companion of a film social network. " +
	"Recommend titles, explain plots without spoilers unless asked, and keep answers short and friendly."

var (
	ErrRateLimited   = errors.New("assistant: rate limit exceeded")
	ErrNotConfigured = errors.New("assistant: no model configured")
)

// Generator produces a completion for prompt under the system instruction.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Config tunes the protections around the Generator.
type Config struct {
	RatePerMinute    int
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig(ratePerMinute int) Config {
	return Config{
		RatePerMinute:    ratePerMinute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

type Assistant struct {
	gen     Generator
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[string]
	timeout time.Duration
}

func New(gen Generator, cfg Config) *Assistant {
	if gen == nil {
		gen = unconfigured{}
	}
	limit := rate.Inf
	burst := 1
	if cfg.RatePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMinute))
		burst = max(cfg.RatePerMinute/6, 1)
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "assistant",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.GlobalLogger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Assistant{
		gen:     gen,
		limiter: rate.NewLimiter(limit, burst),
		breaker: breaker,
		timeout: cfg.Timeout,
	}
}

// Ask sends prompt to the model and returns its reply.
func (a *Assistant) Ask(ctx context.Context, prompt string) (reply string, err error) {
	ctx, span := observability.StartSpan(ctx, "assistant", "Ask")
	outcome := "ok"
	defer func() {
		observability.AssistantRequests.WithLabelValues(outcome).Inc()
		observability.EndSpan(span, err)
	}()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if !a.limiter.Allow() {
		outcome = "limited"
		return "", ErrRateLimited
	}

	reply, err = a.breaker.Execute(func() (string, error) {
		callCtx := ctx
		if a.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, a.timeout)
			defer cancel()
		}
		return a.gen.Generate(callCtx, SystemInstruction, prompt)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "open"
	case err != nil:
		outcome = "error"
	}
	return reply, err
}

type unconfigured struct{}

func (unconfigured) Generate(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}
