package handlers

import (
	"net/http"

	"lexassist/middleware"
	"lexassist/models"
	"lexassist/services/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService user.UserService
}

// RegisterHandler handles POST /api/users/register.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.UserService.Register(c.Request.Context(), req, deviceFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("User registered", zap.String("userId", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler handles POST /api/users/login.
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.UserService.Authenticate(c.Request.Context(), req.Email, req.Password, deviceFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) MeHandler(c *gin.Context) {
	u, err := h.UserService.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,max=120"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.UserService.UpdateProfile(c.Request.Context(), currentUserID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdatePasswordHandler handles PUT /api/users/password. Other devices are
// signed out.
func (h *UserHandler) UpdatePasswordHandler(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.UserService.UpdatePassword(c.Request.Context(), currentUserID(c), req.CurrentPassword, req.NewPassword, deviceFrom(c).DeviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

func (h *UserHandler) PushTokenHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.UserService.AddPushToken(c.Request.Context(), currentUserID(c), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) DevicesHandler(c *gin.Context) {
	devices, err := h.UserService.GetDevices(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	current := c.GetString(middleware.CtxDeviceID)
	for i := range devices {
		devices[i].Current = devices[i].DeviceID == current
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

func (h *UserHandler) SignOutOthersHandler(c *gin.Context) {
	if err := h.UserService.SignOutOtherDevices(c.Request.Context(), currentUserID(c), deviceFrom(c).DeviceID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Other devices signed out"})
}

// LogoutHandler handles DELETE /api/users/logout for the calling device.
func (h *UserHandler) LogoutHandler(c *gin.Context) {
	if err := h.UserService.RevokeToken(c.Request.Context(), currentUserID(c), deviceFrom(c).DeviceID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) DeleteMeHandler(c *gin.Context) {
	if err := h.UserService.DeleteUser(c.Request.Context(), actorFrom(c), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
