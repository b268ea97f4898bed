package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dshills/keyflow/internal/input/key"
)

// Registration errors.
var (
	ErrEmptySignature     = errors.New("command: empty key sequence")
	ErrNoName             = errors.New("command: missing name")
	ErrDuplicateSignature = errors.New("command: duplicate signature")
)

// ErrHandlerPanic wraps a panic recovered from a Handler.
var ErrHandlerPanic = errors.New("command: handler panicked")

// Kind classifies the outcome of feeding a keystroke.
type Kind uint8

const (
	// NoMatch means the buffered keys prefix no signature. Keys holds
	// the discarded buffer.
	NoMatch Kind = iota

	// NeedsMoreInput means the buffer is a strict prefix of at least one
	// signature and completes none.
	NeedsMoreInput

	// Ran means a signature matched and its handler succeeded.
	Ran

	// AmbiguousPrefix means the buffer completes Candidates but is also a
	// strict prefix of another signature. The matcher keeps waiting.
	AmbiguousPrefix

	// Errored means a signature matched and its handler failed.
	Errored
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case NoMatch:
		return "NoMatch"
	case NeedsMoreInput:
		return "NeedsMoreInput"
	case Ran:
		return "Ran"
	case AmbiguousPrefix:
		return "AmbiguousPrefix"
	case Errored:
		return "Errored"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Result is the outcome of Matcher.Feed or Matcher.Flush.
type Result struct {
	Kind Kind

	// Signature is the matched signature for Ran and Errored.
	Signature Signature

	// Value is the handler's return value for Ran.
	Value any

	// Argument is the trailing keystroke of an argument-taking signature.
	Argument    key.Event
	HasArgument bool

	// Candidates are the signatures the buffer already completes, in
	// registration order, for AmbiguousPrefix.
	Candidates []Signature

	// Keys is the buffer that produced the result.
	Keys key.Sequence

	// Count is the repeat count the handler was invoked with.
	Count int

	// Err is the handler error for Errored.
	Err error
}

// Matcher incrementally matches keystrokes against registered command
// signatures.
//
// Matcher is not safe for concurrent use.
type Matcher struct {
	sigs   []Signature
	buf    key.Sequence
	count  int
	order  int
	logger *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithLogger sets the logger used for match diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMatcher creates a matcher with no signatures.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds sig and returns it with its ID assigned. A signature that
// accepts exactly the same input as an existing one is rejected.
func (m *Matcher) Register(sig Signature) (Signature, error) {
	if len(sig.Keys) == 0 {
		return Signature{}, ErrEmptySignature
	}
	if sig.Name == "" {
		return Signature{}, fmt.Errorf("%w for %s", ErrNoName, sig.Keys.VimString())
	}
	for _, existing := range m.sigs {
		if existing.sameShape(sig) {
			return Signature{}, fmt.Errorf("%w: %s already bound to %s",
				ErrDuplicateSignature, sig.Keys.VimString(), existing.Name)
		}
	}

	sig.Keys = sig.Keys.Clone()
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	m.order++
	sig.order = m.order
	m.sigs = append(m.sigs, sig)

	m.logger.Debug("command registered", "keys", sig.Keys.VimString(), "name", sig.Name, "id", sig.ID)
	return sig, nil
}

// Unregister removes every signature whose keys equal keys, with or
// without an argument slot. It reports whether any was removed.
func (m *Matcher) Unregister(keys key.Sequence) bool {
	kept := m.sigs[:0]
	removed := false
	for _, sig := range m.sigs {
		if sig.Keys.Equals(keys) {
			removed = true
			continue
		}
		kept = append(kept, sig)
	}
	m.sigs = kept
	return removed
}

// Signatures returns the registered signatures in registration order.
func (m *Matcher) Signatures() []Signature {
	out := make([]Signature, len(m.sigs))
	copy(out, m.sigs)
	return out
}

// Len returns the number of registered signatures.
func (m *Matcher) Len() int {
	return len(m.sigs)
}

// Pending returns a copy of the buffered keys.
func (m *Matcher) Pending() key.Sequence {
	return m.buf.Clone()
}

// IsWaiting reports whether keys are buffered.
func (m *Matcher) IsWaiting() bool {
	return len(m.buf) > 0
}

// SetCount sets the repeat count passed to the next handler. It is
// cleared by Reset and after every terminal result.
func (m *Matcher) SetCount(n int) {
	m.count = n
}

// Reset discards buffered keys and the pending count. The registry is
// untouched.
func (m *Matcher) Reset() {
	m.buf = nil
	m.count = 0
}

// Feed adds ki to the buffer and matches it against the registry.
func (m *Matcher) Feed(ki key.Event) Result {
	buf := m.buf.Append(ki)

	var satisfied []Signature
	extends := false
	for _, sig := range m.sigs {
		if sig.satisfiedBy(buf) {
			satisfied = append(satisfied, sig)
		}
		if !extends && sig.extendsBeyond(buf) {
			extends = true
		}
	}

	switch {
	case len(satisfied) == 0 && !extends:
		m.Reset()
		m.logger.Debug("no command match", "keys", buf.VimString())
		return Result{Kind: NoMatch, Keys: buf}
	case len(satisfied) == 0:
		m.buf = buf
		return Result{Kind: NeedsMoreInput, Keys: buf.Clone()}
	case extends:
		m.buf = buf
		return Result{Kind: AmbiguousPrefix, Candidates: satisfied, Keys: buf.Clone()}
	default:
		return m.run(satisfied[0], buf)
	}
}

// Flush ends the current sequence when no more keys are coming, as after
// a timeout. The earliest registered signature completed by the buffer
// runs; otherwise the buffer is discarded as NoMatch.
func (m *Matcher) Flush() Result {
	buf := m.buf
	for _, sig := range m.sigs {
		if len(buf) > 0 && sig.satisfiedBy(buf) {
			return m.run(sig, buf)
		}
	}
	m.Reset()
	return Result{Kind: NoMatch, Keys: buf}
}

func (m *Matcher) run(sig Signature, buf key.Sequence) Result {
	n := m.count
	if n <= 0 {
		n = 1
	}
	m.Reset()

	inv := Invocation{
		Signature: sig,
		Keys:      buf.Clone(),
		Count:     n,
	}
	if sig.TakesArgument {
		inv.Argument = buf[len(buf)-1]
		inv.HasArgument = true
	}

	res := Result{
		Kind:        Ran,
		Signature:   sig,
		Argument:    inv.Argument,
		HasArgument: inv.HasArgument,
		Keys:        buf,
		Count:       n,
	}

	value, err := invoke(sig.Handler, inv)
	if err != nil {
		res.Kind = Errored
		res.Err = err
		m.logger.Warn("command failed", "name", sig.Name, "keys", buf.VimString(), "error", err)
	} else {
		res.Value = value
		m.logger.Debug("command ran", "name", sig.Name, "keys", buf.VimString(), "count", n)
	}

	return res
}

// invoke calls h, converting a panic into an error.
func invoke(h Handler, inv Invocation) (value any, err error) {
	if h == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, inv.Signature.Name, r)
		}
	}()
	return h(inv)
}
