// Package memory implements the staff directory as an in-memory map.
// Staff records change rarely; a single RWMutex over the map is enough.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/deps"
	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/entities"
	stafferrors "github.com/medcall/clinic-queue/auth-service/internal/domain/staff/errors"
)

type directory struct {
	mu      sync.RWMutex
	members map[string]entities.StaffMember // keyed by id
	byName  map[string]string               // lowercase username -> id
	logger  zerolog.Logger
}

// NewDirectory creates an empty in-memory staff directory
func NewDirectory(logger zerolog.Logger) deps.Directory {
	return &directory{
		members: make(map[string]entities.StaffMember),
		byName:  make(map[string]string),
		logger:  logger.With().Str("repository", "staff").Logger(),
	}
}

func (d *directory) Add(_ context.Context, member *entities.StaffMember) error {
	if member == nil || member.ID == "" || member.Username == "" {
		return stafferrors.ErrInvalidStaff
	}
	if !entities.ValidRole(member.Role) {
		return stafferrors.ErrInvalidStaff
	}

	key := strings.ToLower(member.Username)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.members[member.ID]; ok {
		return stafferrors.ErrStaffExists
	}
	if _, ok := d.byName[key]; ok {
		return stafferrors.ErrStaffExists
	}

	d.members[member.ID] = *member
	d.byName[key] = member.ID

	d.logger.Info().
		Str("staff_id", member.ID).
		Str("role", string(member.Role)).
		Msg("staff member registered")
	return nil
}

func (d *directory) Get(_ context.Context, id string) (entities.StaffMember, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	member, ok := d.members[id]
	if !ok {
		return entities.StaffMember{}, stafferrors.ErrStaffNotFound
	}
	return member, nil
}

func (d *directory) List(_ context.Context) ([]entities.StaffMember, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := make([]entities.StaffMember, 0, len(d.members))
	for _, m := range d.members {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Username < members[j].Username
	})
	return members, nil
}

func (d *directory) Exists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.members[id]
	return ok, nil
}
