package services

import "errors"

var (
	// ErrDuplicateName is returned by Register when the name is taken,
	// ignoring case.
	ErrDuplicateName = errors.New("name has already been taken")
	// ErrInvalidCredentials covers both an unknown name and a wrong password.
	ErrInvalidCredentials = errors.New("invalid name or password")
)
