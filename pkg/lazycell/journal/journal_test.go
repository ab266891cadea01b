package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		entry, err := NewEntry("config", 1, "FOO", 2*time.Millisecond, nil)
		require.NoError(t, err)

		_, parseErr := uuid.Parse(entry.ID)
		assert.NoError(t, parseErr, "ID should be a UUID")
		assert.Equal(t, "config", entry.Cell)
		assert.Equal(t, 1, entry.Attempt)
		assert.Equal(t, OutcomeConstructed, entry.Outcome)
		assert.Empty(t, entry.Error)
		assert.Equal(t, 2*time.Millisecond, entry.Duration)

		var arg string
		require.NoError(t, entry.DecodeArg(&arg))
		assert.Equal(t, "FOO", arg)
	})

	t.Run("failure", func(t *testing.T) {
		entry, err := NewEntry("config", 3, 42, 0, errors.New("boom"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeFailed, entry.Outcome)
		assert.Equal(t, "boom", entry.Error)
	})

	t.Run("struct argument", func(t *testing.T) {
		type dsn struct {
			Host string
			Port int
		}
		entry, err := NewEntry("db", 1, dsn{Host: "localhost", Port: 5432}, 0, nil)
		require.NoError(t, err)

		var got dsn
		require.NoError(t, entry.DecodeArg(&got))
		assert.Equal(t, dsn{Host: "localhost", Port: 5432}, got)
	})

	t.Run("unencodable argument", func(t *testing.T) {
		entry, err := NewEntry("db", 1, make(chan int), 0, nil)
		assert.Error(t, err)
		assert.NotEmpty(t, entry.ID, "entry is still usable")
		assert.Nil(t, entry.Arg)
	})

	t.Run("unique ids", func(t *testing.T) {
		a, _ := NewEntry("db", 1, nil, 0, nil)
		b, _ := NewEntry("db", 1, nil, 0, nil)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestDecodeArg_NoArg(t *testing.T) {
	var s string
	assert.Error(t, Entry{ID: "x"}.DecodeArg(&s))
}
