package rooms

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"lactacare/internal/config"
	"lactacare/internal/domain"
	"lactacare/internal/repository"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var _ repository.RoomDirectory = (*Catalog)(nil)

// Catalog is the read-only room directory the reservation registry consults
type Catalog struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
}

// Load reads the rooms file (YAML, optional) and applies the
// "room:capacity,..." overrides on top of it
func Load(file, overrides string, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{rooms: make(map[string]domain.Room)}

	if file != "" {
		v := viper.New()
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read rooms file %s: %w", file, err)
		}
		var rooms []domain.Room
		if err := v.UnmarshalKey("rooms", &rooms); err != nil {
			return nil, fmt.Errorf("failed to parse rooms file %s: %w", file, err)
		}
		for _, r := range rooms {
			if err := c.put(r); err != nil {
				return nil, err
			}
		}
	}

	for id, raw := range config.ParsePairs(overrides) {
		capacity, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("room %s: capacity %q is not a number", id, raw)
		}
		room := c.rooms[id]
		room.ID = id
		room.Capacity = capacity
		if err := c.put(room); err != nil {
			return nil, err
		}
	}

	logger.Info("🏠 Room catalog loaded",
		zap.String("file", file),
		zap.Int("rooms", len(c.rooms)),
	)
	return c, nil
}

// FromConfig loads the catalog from ROOMS_FILE and ROOM_CAPACITIES
func FromConfig(cfg *config.Config, logger *zap.Logger) (*Catalog, error) {
	return Load(cfg.RoomsFile, cfg.RoomCapacities, logger)
}

func (c *Catalog) put(r domain.Room) error {
	if r.ID == "" {
		return domain.NewInvalidInput("room id is required")
	}
	if r.Capacity < 1 {
		return domain.NewInvalidInput("room %s: capacity must be at least 1, got %d", r.ID, r.Capacity)
	}
	if r.Name == "" {
		r.Name = r.ID
	}
	c.rooms[r.ID] = r
	return nil
}

func (c *Catalog) Room(ctx context.Context, roomID string) (domain.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return r, nil
}

// Rooms returns every room ordered by id
func (c *Catalog) Rooms(ctx context.Context) ([]domain.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
