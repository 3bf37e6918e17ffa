package repository

import (
	"context"

	"smart-clinic-backend/internal/domain/entity"
)

type RoleRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Role, error)
	FindAll(ctx context.Context) ([]entity.Role, error)
}
