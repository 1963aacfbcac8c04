package service

import "errors"

var (
	// ErrInvalidCartData rejects a merge request whose shape or length
	// is out of bounds. The stored cart is left untouched.
	ErrInvalidCartData = errors.New("invalid cart data")

	// ErrInvalidCoupon means the submitted code matched no coupon.
	ErrInvalidCoupon = errors.New("invalid coupon code")

	// ErrCartNotFound means the operation targets an owner without a cart.
	ErrCartNotFound = errors.New("cart not found")
)
