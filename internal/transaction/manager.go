package transaction

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// UndoFunc reverses one filesystem change
type UndoFunc func() error

type step struct {
	name string
	undo UndoFunc
}

// Manager records the changes an install makes to the destination
// directory so they can be undone if a later step fails.
// A Manager belongs to a single install and is not safe for concurrent use.
type Manager struct {
	steps  []step
	logger *zerolog.Logger
}

// NewManager creates a new transaction manager
func NewManager(logger *zerolog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Add registers the undo action for a change that has just been made
func (m *Manager) Add(name string, undo UndoFunc) {
	m.steps = append(m.steps, step{name: name, undo: undo})
}

// Rollback undoes every registered change, newest first. All undo actions
// run even when some of them fail; their errors are joined.
func (m *Manager) Rollback() error {
	if len(m.steps) == 0 {
		return nil
	}

	if m.logger != nil {
		m.logger.Warn().Int("steps", len(m.steps)).Msg("rolling back install")
	}

	var errs []error
	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		if m.logger != nil {
			m.logger.Debug().Str("operation", s.name).Msg("undoing")
		}
		if err := s.undo(); err != nil {
			if m.logger != nil {
				m.logger.Error().Err(err).Str("operation", s.name).Msg("undo failed")
			}
			errs = append(errs, fmt.Errorf("undo %s: %w", s.name, err))
		}
	}

	m.steps = nil

	if len(errs) > 0 {
		return fmt.Errorf("rollback incomplete: %w", errors.Join(errs...))
	}
	return nil
}

// Commit forgets all registered changes, keeping them in place
func (m *Manager) Commit() {
	m.steps = nil
}
