package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Subscription, error)
	FindByOwnerID(ctx context.Context, db *gorm.DB, ownerID snowflake.ID) ([]Subscription, error)
	ListIDs(ctx context.Context, db *gorm.DB) ([]string, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id string) error
}
