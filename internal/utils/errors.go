package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken        = errors.New("INVALID_TOKEN")
	ErrInvalidDistributor  = errors.New("INVALID_DISTRIBUTOR")
	ErrInvalidPeriodType   = errors.New("INVALID_PERIOD_TYPE")
	ErrInvalidQuantity     = errors.New("INVALID_QUANTITY")
	ErrInvalidWindow       = errors.New("INVALID_WINDOW")
	ErrProductNotFound     = errors.New("PRODUCT_NOT_FOUND")
	ErrSaleNotFound        = errors.New("SALE_NOT_FOUND")
	ErrDistributorNotFound = errors.New("DISTRIBUTOR_NOT_FOUND")
)
