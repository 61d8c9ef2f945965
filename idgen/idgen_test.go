package idgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeUnique(t *testing.T) {
	g, err := NewGenerator(Config{MachineID: 7})
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	for range 1000 {
		id := g.Generate()
		assert.Positive(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestSonyflake(t *testing.T) {
	g, err := NewGenerator(Config{Type: "sonyflake", MachineID: 42, StartTime: "2024-01-01"})
	require.NoError(t, err)
	a, b := g.Generate(), g.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)
}

func TestNewGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(Config{Type: "uuid"})
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = NewGenerator(Config{Type: "sonyflake", MachineID: 70000})
	assert.True(t, errors.Is(err, ErrInvalidMachineID))

	_, err = NewGenerator(Config{Type: "sonyflake", StartTime: "2024-02-30"})
	assert.Error(t, err)

	_, err = NewGenerator(Config{MachineID: 5000})
	assert.True(t, errors.Is(err, ErrCreateNode))
}

func TestGenIDString(t *testing.T) {
	a, b := GenIDString(), GenIDString()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
