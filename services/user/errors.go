package user

import "errors"

var (
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSuspended          = errors.New("account is suspended")
	ErrDeviceLimit        = errors.New("maximum device limit reached")
	ErrTermsNotAccepted   = errors.New("terms of service must be accepted")
	ErrWeakPassword       = errors.New("password too weak")
	ErrInvalidName        = errors.New("name is required")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidRole        = errors.New("invalid role")
	ErrSelfAction         = errors.New("admins cannot change their own role or suspension")
	ErrInvalidPushToken   = errors.New("invalid push token")
)
