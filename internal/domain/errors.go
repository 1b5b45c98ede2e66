package domain

import "errors"

var (
	ErrRecordNotFound        = errors.New("record not found")
	ErrPaymentAlreadyExists  = errors.New("payment already exists")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrSubscriberClosed      = errors.New("subscriber is closed")
	ErrSubscriberOverflow    = errors.New("subscriber delivery buffer is full")
	ErrMeetingAlreadyCreated = errors.New("meeting reference already set")
)
