package domain

import "errors"

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrRecordNotFound    = errors.New("record not found")
	ErrScreeningExists   = errors.New("a screening already exists for this movie")
	ErrMovieNotFound     = errors.New("movie not found at the metadata provider")
	ErrSeatUnavailable   = errors.New("some of the selected seats are no longer available")
	ErrHoldExpired       = errors.New("your seat selection has expired, please book again")
	ErrAlreadyPaid       = errors.New("booking is already paid")
	ErrNothingToCharge   = errors.New("none of the booked tickets can be charged")
)
