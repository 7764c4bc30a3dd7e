package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	workorderdomain "github.com/smallbiznis/trueup/internal/workorder/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() workorderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *workorderdomain.WorkOrder) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*workorderdomain.WorkOrder, error) {
	var order workorderdomain.WorkOrder
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) ListByParticipant(ctx context.Context, db *gorm.DB, principalID snowflake.ID) ([]workorderdomain.WorkOrder, error) {
	var orders []workorderdomain.WorkOrder
	err := db.WithContext(ctx).
		Where("owner_id = ? OR counterparty_id = ?", principalID, principalID).
		Find(&orders).Error
	return orders, err
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&workorderdomain.WorkOrder{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&workorderdomain.WorkOrder{}).Error
}
