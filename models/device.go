package models

import "time"

// Device is one signed-in client of an account. TokenHash is the SHA-256 of
// the bearer token issued to it; the token itself is never stored.
type Device struct {
	DeviceID   string    `bson:"deviceId" json:"deviceId"`
	DeviceName string    `bson:"deviceName" json:"deviceName"`
	IP         string    `bson:"ip" json:"ip"`
	Location   string    `bson:"location" json:"location"`
	LastLogin  time.Time `bson:"lastLogin" json:"lastLogin"`
	TokenHash  string    `bson:"tokenHash" json:"-"`

	// Current marks the device making the request. Not persisted.
	Current bool `bson:"-" json:"current"`
}
