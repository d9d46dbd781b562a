package domain

import "errors"

var (
	ErrInvalidMarket          = errors.New("invalid market")
	ErrMarketNotFound         = errors.New("market not found")
	ErrAlreadyResolved        = errors.New("market already resolved")
	ErrMarketNotResolved      = errors.New("market not resolved")
	ErrResolutionBeforeExpiry = errors.New("market resolved before expiry")
	ErrNotAdmin               = errors.New("requester is not an admin")
)
