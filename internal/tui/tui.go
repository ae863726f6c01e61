// Package tui implements the interactive terminal GUI for Nsynca.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nsynca/nsynca/internal/watcher"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Options configures the GUI.
type Options struct {
	Runner  Runner
	History History
	// HistoryDir is watched for changes when set.
	HistoryDir string
}

// Run launches the GUI and blocks until the user quits. Cancelling ctx
// cancels an in-flight run.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ref := &programRef{}
	model := NewModel(ctx, opts.Runner, opts.History, ref)
	model.historyDir = opts.HistoryDir

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	ref.Set(p)
	defer ref.Clear()

	if opts.HistoryDir != "" {
		w, err := watcher.New(opts.HistoryDir, "")
		if err != nil {
			slog.Warn("History watcher unavailable", "err", err)
		} else if err := w.Start(); err != nil {
			slog.Warn("History watcher unavailable", "err", err)
			w.Stop()
		} else {
			defer w.Stop()
			go forwardEvents(ctx, w, ref)
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func forwardEvents(ctx context.Context, w *watcher.Watcher, ref *programRef) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			if ev.Type == watcher.EventHistoryChanged {
				ref.Send(HistoryChangedMsg{Month: ev.Month})
			}
		}
	}
}
