package main

import (
	_ "embed"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dshills/keyflow/internal/config"
	"github.com/dshills/keyflow/internal/input/command"
	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/pipeline"
	"github.com/dshills/keyflow/internal/input/remap"
	"github.com/dshills/keyflow/internal/script"
)

//go:embed defaults.toml
var defaultConfig []byte

// modeCommandPrefix marks commands that switch the session's mode, as in
// "mode.insert".
const modeCommandPrefix = "mode."

// loadFile loads path, or the built-in configuration when path is empty.
func loadFile(path string) (*config.File, error) {
	if path == "" {
		return config.Parse("defaults.toml", config.FormatTOML, defaultConfig)
	}
	return config.Load(path)
}

// session is one configured input pipeline plus the mode it is in.
type session struct {
	path   string
	logger *slog.Logger

	file   *config.File
	engine *script.Engine
	target *config.Target
	driver *pipeline.Driver
	mode   remap.Mode
}

// newSession builds a session from f. An error wrapping
// config.ErrInvalidEntry still returns a usable session.
func newSession(path string, f *config.File, logger *slog.Logger) (*session, error) {
	s := &session{
		path:   path,
		logger: logger,
		mode:   remap.ModeNormal,
	}
	if err := s.apply(f); err != nil {
		if s.driver == nil {
			return nil, err
		}
		return s, err
	}
	return s, nil
}

// apply replaces the session's tables and matchers with those built from
// f. On a fatal error the previous configuration stays in place.
func (s *session) apply(f *config.File) error {
	countModes, err := f.Settings.ParseCountModes()
	if err != nil {
		return err
	}

	engine := script.NewEngine(script.WithLogger(s.logger))
	target, applyErr := config.Build(f, handlerSource(engine), s.logger)

	opts := []pipeline.Option{
		pipeline.WithLogger(s.logger),
		pipeline.WithModeFunc(s.switchMode),
	}
	if countModes != nil {
		opts = append(opts, pipeline.WithCountModes(countModes...))
	}
	for mode, m := range target.ModeMatchers {
		opts = append(opts, pipeline.WithModeMatcher(mode, m))
	}

	if s.engine != nil {
		_ = s.engine.Close()
	}
	s.file = f
	s.engine = engine
	s.target = target
	s.driver = pipeline.New(target.Table, target.Matcher, opts...)
	return applyErr
}

// handlerSource compiles scripted commands with e. Commands without a
// script return their own name.
func handlerSource(e *script.Engine) config.HandlerSource {
	return config.HandlerSourceFunc(func(spec config.CommandSpec) (command.Handler, error) {
		h, err := e.Handler(spec)
		if err != nil || h != nil {
			return h, err
		}
		name := spec.Name
		return func(command.Invocation) (any, error) { return name, nil }, nil
	})
}

func (s *session) handleKey(ev key.Event) []pipeline.Output {
	return s.driver.HandleKey(s.mode, ev)
}

func (s *session) flush() []pipeline.Output {
	return s.driver.Flush(s.mode)
}

// switchMode is the driver's mode func. A mode command that ran moves
// the session, and the keys after it, into that mode.
func (s *session) switchMode(ran pipeline.Output, mode remap.Mode) remap.Mode {
	name, ok := strings.CutPrefix(ran.Command.Signature.Name, modeCommandPrefix)
	if !ok {
		return mode
	}
	next, err := remap.ParseMode(name)
	if err != nil {
		s.logger.Warn("unknown mode command", "command", ran.Command.Signature.Name)
		return mode
	}
	s.mode = next
	return next
}

// waiting reports whether input is buffered and a timeout flush would
// settle it.
func (s *session) waiting() bool {
	if len(s.driver.Pending(s.mode)) > 0 {
		return true
	}
	return s.driver.Matcher(s.mode).IsWaiting()
}

// timeout returns how long to wait before flushing buffered input.
func (s *session) timeout() time.Duration {
	return s.file.Settings.Timeout()
}

func (s *session) close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// isFatal reports whether err from apply left the session unusable.
func isFatal(err error) bool {
	return err != nil && !errors.Is(err, config.ErrInvalidEntry)
}
