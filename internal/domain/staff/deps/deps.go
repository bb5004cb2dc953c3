package deps

import (
	"context"

	"github.com/medcall/clinic-queue/auth-service/internal/domain/staff/entities"
)

// Directory manages the registry of staff members allowed to log in
type Directory interface {
	Add(ctx context.Context, member *entities.StaffMember) error
	Get(ctx context.Context, id string) (entities.StaffMember, error)
	List(ctx context.Context) ([]entities.StaffMember, error)
	Exists(ctx context.Context, id string) (bool, error)
}
