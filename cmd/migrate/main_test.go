package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) Up() error { return m.Called().Error(0) }

func (m *mockMigrator) Down(steps int) error { return m.Called(steps).Error(0) }

func (m *mockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *mockMigrator) Force(version int) error { return m.Called(version).Error(0) }

func TestRun(t *testing.T) {
	log := zap.NewNop()

	t.Run("up", func(t *testing.T) {
		m := new(mockMigrator)
		m.On("Up").Return(nil).Once()

		require.NoError(t, run(m, []string{"up"}, log))
		m.AssertExpectations(t)
	})

	t.Run("down defaults to all", func(t *testing.T) {
		m := new(mockMigrator)
		m.On("Down", 0).Return(nil).Once()

		require.NoError(t, run(m, []string{"down"}, log))
		m.AssertExpectations(t)
	})

	t.Run("down with steps", func(t *testing.T) {
		m := new(mockMigrator)
		m.On("Down", 2).Return(nil).Once()

		require.NoError(t, run(m, []string{"down", "2"}, log))
		m.AssertExpectations(t)
	})

	t.Run("down rejects a negative count", func(t *testing.T) {
		err := run(new(mockMigrator), []string{"down", "-1"}, log)
		assert.ErrorIs(t, err, errUsage)
	})

	t.Run("version", func(t *testing.T) {
		m := new(mockMigrator)
		m.On("Version").Return(uint(1), false, nil).Once()

		require.NoError(t, run(m, []string{"version"}, log))
		m.AssertExpectations(t)
	})

	t.Run("force needs a numeric version", func(t *testing.T) {
		assert.ErrorIs(t, run(new(mockMigrator), []string{"force"}, log), errUsage)
		assert.ErrorIs(t, run(new(mockMigrator), []string{"force", "x"}, log), errUsage)

		m := new(mockMigrator)
		m.On("Force", 1).Return(nil).Once()
		require.NoError(t, run(m, []string{"force", "1"}, log))
	})

	t.Run("migrator errors pass through", func(t *testing.T) {
		m := new(mockMigrator)
		boom := errors.New("dirty database")
		m.On("Up").Return(boom).Once()

		assert.ErrorIs(t, run(m, []string{"up"}, log), boom)
	})

	t.Run("unknown command", func(t *testing.T) {
		assert.ErrorIs(t, run(new(mockMigrator), []string{"sideways"}, log), errUsage)
	})
}
