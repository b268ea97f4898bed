package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/keyflow/internal/input/command"
	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/remap"
)

// HandlerSource builds the handler for a configured command.
type HandlerSource interface {
	Handler(spec CommandSpec) (command.Handler, error)
}

// HandlerSourceFunc adapts a function to HandlerSource.
type HandlerSourceFunc func(spec CommandSpec) (command.Handler, error)

// Handler calls f.
func (f HandlerSourceFunc) Handler(spec CommandSpec) (command.Handler, error) {
	return f(spec)
}

// Target receives the applied configuration.
type Target struct {
	Table *remap.Table

	// Matcher receives commands with no mode.
	Matcher *command.Matcher

	// ModeMatchers receive commands that name a mode. A missing entry is
	// created on demand.
	ModeMatchers map[remap.Mode]*command.Matcher

	Logger *slog.Logger
}

// defaultMapModes are the modes a [[map]] entry with no mode applies to.
var defaultMapModes = []remap.Mode{
	remap.ModeNormal,
	remap.ModeVisual,
	remap.ModeSelect,
	remap.ModeOperatorPending,
}

// Apply installs every mapping and command in f into t. Entries that fail
// are skipped and reported together as EntryErrors joined into the
// returned error; the rest are applied.
func Apply(f *File, t *Target, handlers HandlerSource) error {
	var errs []error

	for i, m := range f.Maps {
		if err := applyMap(t.Table, m); err != nil {
			errs = append(errs, &EntryError{Section: "map", Index: i, Keys: m.LHS, Err: err})
		}
	}

	for i, c := range f.Commands {
		if err := applyCommand(t, c, handlers); err != nil {
			errs = append(errs, &EntryError{Section: "command", Index: i, Keys: c.Keys, Err: err})
		}
	}

	if t.Logger != nil {
		t.Logger.Info("config applied",
			"maps", len(f.Maps),
			"commands", len(f.Commands),
			"errors", len(errs))
	}
	return errors.Join(errs...)
}

// Build creates a fresh table and matcher populated from f. The target is
// returned even when some entries failed.
func Build(f *File, handlers HandlerSource, logger *slog.Logger) (*Target, error) {
	t := &Target{
		Table:        remap.New(remap.WithLogger(logger)),
		Matcher:      command.NewMatcher(command.WithLogger(logger)),
		ModeMatchers: make(map[remap.Mode]*command.Matcher),
		Logger:       logger,
	}
	return t, Apply(f, t, handlers)
}

// MapModes returns the modes a [[map]] entry applies to.
func (m MapSpec) MapModes() ([]remap.Mode, error) {
	names := m.Modes
	if m.Mode != "" {
		names = append([]string{m.Mode}, names...)
	}
	if len(names) == 0 {
		return defaultMapModes, nil
	}

	modes := make([]remap.Mode, 0, len(names))
	for _, name := range names {
		mode, err := remap.ParseMode(name)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}

func applyMap(table *remap.Table, m MapSpec) error {
	modes, err := m.MapModes()
	if err != nil {
		return err
	}
	lhs, err := key.ParseSequence(m.LHS)
	if err != nil {
		return fmt.Errorf("lhs: %w", err)
	}
	rhs, err := key.ParseSequence(m.RHS)
	if err != nil {
		return fmt.Errorf("rhs: %w", err)
	}

	for _, mode := range modes {
		if err := table.Set(mode, lhs, rhs, m.Recursive); err != nil {
			return err
		}
	}
	return nil
}

func applyCommand(t *Target, c CommandSpec, handlers HandlerSource) error {
	keys, err := key.ParseSequence(c.Keys)
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}

	matcher := t.Matcher
	if c.Mode != "" {
		mode, err := remap.ParseMode(c.Mode)
		if err != nil {
			return err
		}
		if t.ModeMatchers == nil {
			t.ModeMatchers = make(map[remap.Mode]*command.Matcher)
		}
		matcher = t.ModeMatchers[mode]
		if matcher == nil {
			var opts []command.Option
			if t.Logger != nil {
				opts = append(opts, command.WithLogger(t.Logger))
			}
			matcher = command.NewMatcher(opts...)
			t.ModeMatchers[mode] = matcher
		}
	}

	var h command.Handler
	if handlers != nil {
		h, err = handlers.Handler(c)
		if err != nil {
			return fmt.Errorf("handler: %w", err)
		}
	}

	_, err = matcher.Register(command.Signature{
		Keys:          keys,
		Name:          c.Name,
		TakesArgument: c.Argument,
		Handler:       h,
	})
	return err
}

// ParseCountModes parses Settings.CountModes. It returns nil when unset.
func (s Settings) ParseCountModes() ([]remap.Mode, error) {
	if len(s.CountModes) == 0 {
		return nil, nil
	}
	modes := make([]remap.Mode, 0, len(s.CountModes))
	for _, name := range s.CountModes {
		mode, err := remap.ParseMode(name)
		if err != nil {
			return nil, fmt.Errorf("count_modes: %w", err)
		}
		modes = append(modes, mode)
	}
	return modes, nil
}
