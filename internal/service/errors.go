package service

import "errors"

var (
	ErrUnauthenticated          = errors.New("missing user identity")
	ErrUnauthorized             = errors.New("resource belongs to another user")
	ErrInvalidQuantity          = errors.New("quantity must be greater than zero")
	ErrInvalidProductID         = errors.New("invalid product id")
	ErrProductNotFound          = errors.New("product not found")
	ErrLineNotFound             = errors.New("cart line not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrEmptyCart                = errors.New("cart empty")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrProductUnavailable       = errors.New("product no longer available")
	ErrPaymentDeclined          = errors.New("payment declined")
	ErrCheckoutFailed           = errors.New("checkout failed")
	ErrIllegalTransition        = errors.New("illegal transition of checkout stage")
)
