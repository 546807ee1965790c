package middleware

import (
	"net/http"

	"lexassist/utils"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by the middleware in this package.
const (
	CtxUserID         = "userID"
	CtxRole           = "role"
	CtxDeviceID       = "deviceID"
	CtxDeviceName     = "deviceName"
	CtxDeviceIP       = "deviceIP"
	CtxDeviceLocation = "deviceLocation"
	CtxLogger         = "logger"
)

// DeviceDetailsMiddleware requires the device headers every client sends.
// X-Device-Location is optional and self-reported.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := utils.SanitizeText(c.GetHeader("X-Device-ID"), 128)
		deviceName := utils.SanitizeText(c.GetHeader("X-Device-Name"), 128)
		if deviceID == "" || deviceName == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required device details: X-Device-ID and X-Device-Name",
			})
			return
		}
		location := utils.SanitizeText(c.GetHeader("X-Device-Location"), 120)
		if location == "" {
			location = "Unknown"
		}

		c.Set(CtxDeviceID, deviceID)
		c.Set(CtxDeviceName, deviceName)
		c.Set(CtxDeviceIP, c.ClientIP())
		c.Set(CtxDeviceLocation, location)
		c.Next()
	}
}
