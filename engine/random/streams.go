package random

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nathoo/glyphcore/types"
)

// Slots is the persistence collaborator for the primary and secondary
// streams. WriteSlot must overwrite the pair atomically.
type Slots interface {
	ReadSlot(kind types.StreamKind) (types.RandomState, error)
	WriteSlot(kind types.StreamKind, st types.RandomState) error
}

// Manager hands out engines for the three streams. The preview stream is
// held in memory only; the other two are read from and written to Slots.
type Manager struct {
	slots   Slots
	preview types.RandomState
	epochs  map[types.StreamKind]uint64
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPreviewSeed fixes the preview stream's starting seed.
func WithPreviewSeed(seed uint32) Option {
	return func(m *Manager) {
		m.preview = types.RandomState{Seed: NormalizeSeed(seed), SecondGaussian: NoGaussian}
	}
}

// WithLogger sets the logger used for acquire/commit debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager over slots. Unless overridden, the preview
// seed is derived from the process clock.
func NewManager(slots Slots, opts ...Option) *Manager {
	m := &Manager{
		slots: slots,
		preview: types.RandomState{
			Seed:           NormalizeSeed(uint32(time.Now().UnixMilli() % (1 << 32))),
			SecondGaussian: NoGaussian,
		},
		epochs: map[types.StreamKind]uint64{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns a fresh engine over a private copy of kind's pair.
func (m *Manager) Acquire(kind types.StreamKind) (*Engine, error) {
	read, write, err := m.access(kind)
	if err != nil {
		return nil, err
	}

	epoch := m.epochs[kind]
	slot := Slot{
		Read: read,
		Write: func(st types.RandomState) error {
			if m.epochs[kind] != epoch {
				return ErrStale
			}
			if err := write(st); err != nil {
				return err
			}
			m.epochs[kind]++
			epoch = m.epochs[kind]
			m.logger.Debug("stream committed", "stream", kind, "seed", st.Seed, "epoch", epoch)
			return nil
		},
	}

	eng, err := Bind(kind, slot)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("stream acquired", "stream", kind, "seed", eng.seed)
	return eng, nil
}

// Peek returns kind's committed pair without acquiring an engine.
func (m *Manager) Peek(kind types.StreamKind) (types.RandomState, error) {
	read, _, err := m.access(kind)
	if err != nil {
		return types.RandomState{}, err
	}
	return read()
}

// access returns the read and write halves of kind's slot strategy.
func (m *Manager) access(kind types.StreamKind) (func() (types.RandomState, error), func(types.RandomState) error, error) {
	switch kind {
	case types.StreamPreview:
		read := func() (types.RandomState, error) { return m.preview, nil }
		write := func(st types.RandomState) error {
			m.preview = st
			return nil
		}
		return read, write, nil
	case types.StreamPrimary, types.StreamSecondary:
		read := func() (types.RandomState, error) { return m.slots.ReadSlot(kind) }
		write := func(st types.RandomState) error { return m.slots.WriteSlot(kind, st) }
		return read, write, nil
	default:
		return nil, nil, fmt.Errorf("acquire %q: %w", kind, ErrUnknownStream)
	}
}
