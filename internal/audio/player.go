package audio

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/yolodolo42/edumind/internal/llm"
)

// ErrBusy is returned by Play while audio is loading or playing.
var ErrBusy = errors.New("audio is already loading or playing")

// Fetcher produces encoded speech for text.
type Fetcher func(ctx context.Context, text string) (*llm.SpeechResponse, error)

// Sink plays encoded audio until it ends or ctx is cancelled.
type Sink interface {
	Play(ctx context.Context, audio []byte, format string) error
}

// Player runs one playback at a time through the state machine in Next.
type Player struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	fetch    Fetcher
	sink     Sink
	logger   *slog.Logger
	onChange func(State, error)
}

// NewPlayer creates an idle player.
func NewPlayer(fetch Fetcher, sink Sink, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{fetch: fetch, sink: sink, logger: logger}
}

// OnChange registers a callback invoked after every state change. err is
// set when a playback ended in failure.
func (p *Player) OnChange(fn func(State, error)) {
	p.mu.Lock()
	p.onChange = fn
	p.mu.Unlock()
}

// State returns the current state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Play starts reading text aloud. It returns ErrBusy unless the player is
// Idle.
func (p *Player) Play(ctx context.Context, text string) error {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return ErrBusy
	}

	p.state = Next(p.state, EventPlay)
	p.gen++
	gen := p.gen
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.err = nil
	notify := p.onChange
	p.mu.Unlock()

	if notify != nil {
		notify(Loading, nil)
	}

	go p.run(runCtx, gen, text)
	return nil
}

// Toggle is the read-aloud button: it starts playback when Idle and stops
// it otherwise. It returns the resulting state.
func (p *Player) Toggle(ctx context.Context, text string) (State, error) {
	if p.State() != Idle {
		p.Stop()
		return Idle, nil
	}
	if err := p.Play(ctx, text); err != nil {
		return p.State(), err
	}
	return Loading, nil
}

// Stop cancels any loading or playing audio.
func (p *Player) Stop() {
	p.mu.Lock()
	gen, state := p.gen, p.state
	p.mu.Unlock()

	if state == Idle {
		return
	}
	p.transition(gen, EventStop, nil)
}

// Wait blocks until the current playback returns to Idle and reports its
// error. It returns nil immediately when nothing was started.
func (p *Player) Wait() error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Player) run(ctx context.Context, gen uint64, text string) {
	resp, err := p.fetch(ctx, text)
	if err == nil && (resp == nil || len(resp.Audio) == 0) {
		err = llm.ErrNoSpeech
	}
	if err != nil {
		p.logger.Warn("speech fetch failed", "error", err)
		p.transition(gen, EventFailed, err)
		return
	}

	if !p.transition(gen, EventLoaded, nil) {
		return
	}

	err = p.sink.Play(ctx, resp.Audio, resp.Format)
	if err != nil && ctx.Err() == nil {
		p.logger.Warn("audio playback failed", "error", err)
	} else {
		err = nil
	}
	p.transition(gen, EventPlaybackEnded, err)
}

// transition applies ev if gen is still the active playback. It reports
// whether the playback is still running afterwards.
func (p *Player) transition(gen uint64, ev Event, err error) bool {
	p.mu.Lock()
	if gen != p.gen || p.state == Idle {
		p.mu.Unlock()
		return false
	}

	prev := p.state
	next := Next(prev, ev)
	p.state = next
	if next == Idle {
		p.err = err
		if p.cancel != nil {
			p.cancel()
		}
		close(p.done)
	}
	notify := p.onChange
	p.mu.Unlock()

	if next != prev {
		p.logger.Debug("audio state", "event", ev.String(), "from", prev.String(), "to", next.String())
		if notify != nil {
			notify(next, err)
		}
	}
	return next != Idle
}
