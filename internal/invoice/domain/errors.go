package domain

import "errors"

var (
	ErrNotFound      = errors.New("invoice_not_found")
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrInvalidAmount = errors.New("invalid_amount")
)
