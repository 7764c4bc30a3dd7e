package domain

import "errors"

var (
	ErrNotFound            = errors.New("work_order_not_found")
	ErrInvalidOwner        = errors.New("invalid_owner")
	ErrInvalidCounterparty = errors.New("invalid_counterparty")
	ErrNotDeletable        = errors.New("work_order_not_deletable")
)
