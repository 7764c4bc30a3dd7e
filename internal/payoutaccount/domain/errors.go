package domain

import "errors"

var (
	ErrNotFound      = errors.New("payout_account_not_found")
	ErrInvalidOwner  = errors.New("invalid_owner")
	ErrAlreadyExists = errors.New("payout_account_exists")
)
