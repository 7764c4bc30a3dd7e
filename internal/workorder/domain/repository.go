package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *WorkOrder) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*WorkOrder, error)
	ListByParticipant(ctx context.Context, db *gorm.DB, principalID snowflake.ID) ([]WorkOrder, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
