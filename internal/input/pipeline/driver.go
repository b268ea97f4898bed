// Package pipeline drives keystrokes through remapping, count parsing and
// command matching, in that order, the way an editor's input loop would.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dshills/keyflow/internal/input/command"
	"github.com/dshills/keyflow/internal/input/count"
	"github.com/dshills/keyflow/internal/input/key"
	"github.com/dshills/keyflow/internal/input/remap"
)

// Kind classifies a driver output.
type Kind uint8

const (
	// Pending means keys are buffered in one of the stages.
	Pending Kind = iota

	// Ran means a command ran.
	Ran

	// Errored means a command failed or a count overflowed.
	Errored

	// Unmatched means keys matched no command and were discarded.
	Unmatched

	// Ambiguous means keys completed a command that a longer one could
	// still replace.
	Ambiguous
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pending:
		return "Pending"
	case Ran:
		return "Ran"
	case Errored:
		return "Errored"
	case Unmatched:
		return "Unmatched"
	case Ambiguous:
		return "Ambiguous"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Output is one event produced while handling a keystroke.
type Output struct {
	Kind Kind

	// Mode is the mode the keys were handled in.
	Mode remap.Mode

	// Keys are the keys the output refers to.
	Keys key.Sequence

	// Count is the repeat count for Ran and Errored, or the count typed
	// so far for a pending count.
	Count int

	// Command is the matcher result behind Ran, Errored, Unmatched and
	// Ambiguous outputs.
	Command command.Result

	// Err is set for Errored.
	Err error
}

// String returns a one-line description for traces.
func (o Output) String() string {
	switch o.Kind {
	case Ran:
		return fmt.Sprintf("Ran %s x%d -> %v", o.Command.Signature.Name, o.Count, o.Command.Value)
	case Errored:
		if o.Command.Signature.Name != "" {
			return fmt.Sprintf("Errored %s: %v", o.Command.Signature.Name, o.Err)
		}
		return fmt.Sprintf("Errored: %v", o.Err)
	case Ambiguous:
		names := make([]string, len(o.Command.Candidates))
		for i, c := range o.Command.Candidates {
			names[i] = c.Name
		}
		return fmt.Sprintf("Ambiguous %s %v", o.Keys.VimString(), names)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Keys.VimString())
	}
}

// Driver feeds keystrokes through a remap table, a count parser and a
// command matcher.
//
// Driver is not safe for concurrent use.
type Driver struct {
	table    *remap.Table
	matcher  *command.Matcher
	matchers map[remap.Mode]*command.Matcher

	countModes map[remap.Mode]bool
	modeFunc   ModeFunc
	logger     *slog.Logger

	// keys waiting for remap resolution
	pending key.Sequence
	count   *count.State
}

// ModeFunc returns the mode to continue in after ran, which was handled
// in mode.
type ModeFunc func(ran Output, mode remap.Mode) remap.Mode

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for pipeline tracing.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithModeMatcher uses m instead of the default matcher in mode.
func WithModeMatcher(mode remap.Mode, m *command.Matcher) Option {
	return func(d *Driver) {
		d.matchers[mode] = m
	}
}

// WithCountModes sets the modes in which leading digits are parsed as a
// count. The default is normal, visual and operator-pending.
func WithCountModes(modes ...remap.Mode) Option {
	return func(d *Driver) {
		d.countModes = make(map[remap.Mode]bool, len(modes))
		for _, m := range modes {
			d.countModes[m] = true
		}
	}
}

// WithModeFunc lets commands change the mode. fn is called after every
// Ran output, and the keys that follow, including the rest of the same
// expansion, are handled in the mode it returns.
func WithModeFunc(fn ModeFunc) Option {
	return func(d *Driver) {
		d.modeFunc = fn
	}
}

// New creates a driver over table and matcher.
func New(table *remap.Table, matcher *command.Matcher, opts ...Option) *Driver {
	d := &Driver{
		table:    table,
		matcher:  matcher,
		matchers: make(map[remap.Mode]*command.Matcher),
		countModes: map[remap.Mode]bool{
			remap.ModeNormal:          true,
			remap.ModeVisual:          true,
			remap.ModeOperatorPending: true,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Matcher returns the matcher used in mode.
func (d *Driver) Matcher(mode remap.Mode) *command.Matcher {
	if m, ok := d.matchers[mode]; ok {
		return m
	}
	return d.matcher
}

// HandleKey processes one keystroke typed in mode.
func (d *Driver) HandleKey(mode remap.Mode, ev key.Event) []Output {
	d.pending = d.pending.Append(ev)
	out, _ := d.drain(mode, false)
	return out
}

// Flush settles buffered input when no more keys are coming, as after a
// mapping timeout. Pending remaps take their longest complete match and
// an ambiguous command runs its earliest candidate. A count in progress
// is kept.
func (d *Driver) Flush(mode remap.Mode) []Output {
	out, mode := d.drain(mode, true)

	m := d.Matcher(mode)
	if m.IsWaiting() {
		res := []Output{d.fromCommand(mode, m.Flush())}
		d.follow(mode, res)
		out = append(out, res...)
	}
	return out
}

// Reset discards all buffered input.
func (d *Driver) Reset() {
	d.pending = nil
	d.count = nil
	d.matcher.Reset()
	for _, m := range d.matchers {
		m.Reset()
	}
}

// Pending returns the keys waiting for remap resolution followed by the
// keys buffered in mode's matcher.
func (d *Driver) Pending(mode remap.Mode) key.Sequence {
	return d.Matcher(mode).Pending().Concat(d.pending)
}

// PendingCount returns the count typed so far, if one is in progress.
func (d *Driver) PendingCount() (int, bool) {
	if d.count == nil {
		return 0, false
	}
	return d.count.Value(), true
}

// drain resolves buffered keys until the remap stage needs more input. It
// returns the mode in effect afterwards.
func (d *Driver) drain(mode remap.Mode, flush bool) ([]Output, remap.Mode) {
	var out []Output
	for len(d.pending) > 0 {
		var res remap.Result
		if flush {
			res = d.table.Flush(mode, d.pending)
		} else {
			res = d.table.Resolve(mode, d.pending)
		}
		d.logger.Debug("remap", "mode", mode.String(), "input", d.pending.VimString(), "result", res.String())

		switch {
		case res.Kind == remap.NeedsMoreInput:
			return append(out, Output{Kind: Pending, Mode: mode, Keys: d.pending.Clone()}), mode
		case res.IsMatch():
			// Expansions are final and skip remapping.
			d.pending = res.Remainder
			for _, ev := range res.Keys {
				outs := d.dispatch(mode, ev)
				mode = d.follow(mode, outs)
				out = append(out, outs...)
			}
		default:
			// The first key is literal; the rest may start a mapping.
			first := d.pending[0]
			d.pending = d.pending.Tail(1)
			outs := d.dispatch(mode, first)
			mode = d.follow(mode, outs)
			out = append(out, outs...)
		}
	}
	return out, mode
}

// follow passes each Ran output to the mode func.
func (d *Driver) follow(mode remap.Mode, outs []Output) remap.Mode {
	if d.modeFunc == nil {
		return mode
	}
	for _, o := range outs {
		if o.Kind != Ran {
			continue
		}
		if next := d.modeFunc(o, mode); next != mode {
			d.logger.Debug("mode changed", "from", mode.String(), "to", next.String())
			mode = next
		}
	}
	return mode
}

// dispatch sends one resolved key through the count parser and matcher.
func (d *Driver) dispatch(mode remap.Mode, ev key.Event) []Output {
	m := d.Matcher(mode)

	var cr count.Result
	switch {
	case d.count != nil:
		cr = d.count.Feed(ev)
	case d.countModes[mode] && !m.IsWaiting():
		cr = count.Begin(ev)
	default:
		return []Output{d.fromCommand(mode, m.Feed(ev))}
	}

	switch cr.Kind {
	case count.NeedsMore:
		d.count = cr.Next
		return []Output{{Kind: Pending, Mode: mode, Keys: key.NewSequence(ev), Count: cr.Count}}
	case count.Overflow:
		d.count = nil
		d.logger.Warn("count overflow", "error", cr.Err)
		return []Output{{Kind: Errored, Mode: mode, Keys: key.NewSequence(ev), Err: cr.Err}}
	}

	d.count = nil
	if cr.Explicit() {
		m.SetCount(cr.Count)
	}
	return []Output{d.fromCommand(mode, m.Feed(cr.Terminator))}
}

func (d *Driver) fromCommand(mode remap.Mode, res command.Result) Output {
	out := Output{Mode: mode, Keys: res.Keys, Command: res, Count: res.Count}
	switch res.Kind {
	case command.Ran:
		out.Kind = Ran
	case command.Errored:
		out.Kind = Errored
		out.Err = res.Err
	case command.NoMatch:
		out.Kind = Unmatched
	case command.AmbiguousPrefix:
		out.Kind = Ambiguous
	default:
		out.Kind = Pending
	}
	return out
}
