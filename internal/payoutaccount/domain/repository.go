package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, account *PayoutAccount) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*PayoutAccount, error)
	FindByOwnerID(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) (*PayoutAccount, error)
	ListIDs(ctx context.Context, db *gorm.DB) ([]string, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error
}
