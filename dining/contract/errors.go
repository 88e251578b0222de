package contract

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrMalformedRequest = errors.New("malformed fulfillment request")
	ErrQueueSend        = errors.New("queue send failed")
	ErrQueueReceive     = errors.New("queue receive failed")
	ErrQueueDelete      = errors.New("queue delete failed")
	ErrSearch           = errors.New("restaurant search failed")
	ErrDetailLookup     = errors.New("restaurant detail lookup failed")
	ErrPartialBatch     = errors.New("detail lookup returned unprocessed keys")
	ErrNotify           = errors.New("notification send failed")
	ErrNotConfigured    = errors.New("collaborator is not configured")
)
