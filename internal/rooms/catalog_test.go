package rooms

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"lactacare/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRooms(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rooms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileWithOverrides(t *testing.T) {
	file := writeRooms(t, `
rooms:
  - id: sala-1
    name: Sala de lactancia 1
    capacity: 2
  - id: sala-2
    name: Sala de lactancia 2
    capacity: 4
`)

	catalog, err := Load(file, "sala-2:1,sala-3:3", zap.NewNop())
	require.NoError(t, err)

	rooms, err := catalog.Rooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, domain.Room{ID: "sala-1", Name: "Sala de lactancia 1", Capacity: 2}, rooms[0])
	assert.Equal(t, domain.Room{ID: "sala-2", Name: "Sala de lactancia 2", Capacity: 1}, rooms[1])
	assert.Equal(t, domain.Room{ID: "sala-3", Name: "sala-3", Capacity: 3}, rooms[2])
}

func TestLoad_OverridesOnly(t *testing.T) {
	catalog, err := Load("", "sala-1:2", zap.NewNop())
	require.NoError(t, err)

	room, err := catalog.Room(context.Background(), "sala-1")
	require.NoError(t, err)
	assert.Equal(t, 2, room.Capacity)

	_, err = catalog.Room(context.Background(), "sala-9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		overrides string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.yaml"), ""},
		{"zero capacity in file", writeRooms(t, "rooms:\n  - id: sala-1\n    capacity: 0\n"), ""},
		{"non numeric override", "", "sala-1:many"},
		{"zero override", "", "sala-1:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.file, tt.overrides, zap.NewNop())
			assert.Error(t, err)
		})
	}
}
