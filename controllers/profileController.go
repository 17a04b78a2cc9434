package controllers

import (
	"net/http"
	"time"

	"github.com/Njoroge/sokoni-api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Authentication required")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user})
}

func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Authentication required")
		return
	}

	var profileData struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := ctx.ShouldBindJSON(&profileData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	updates := map[string]any{}
	if profileData.FirstName != "" {
		updates["first_name"] = profileData.FirstName
	}
	if profileData.LastName != "" {
		updates["last_name"] = profileData.LastName
	}
	if len(updates) == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := c.db.Model(user).Updates(updates).Error; err != nil {
		log.Error().Err(err).Msg("profile update error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Profile updated successfully.", "user": user})
}

// ChangePassword requires the current password and stamps PasswordChangedAt,
// invalidating previously issued tokens.
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	user, ok := middlewares.CurrentUser(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "Authentication required")
		return
	}

	var passwordData struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&passwordData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if user.Password == "" || comparePasswords(user.Password, passwordData.CurrentPassword) != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	hashedPassword, err := hashPassword(passwordData.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("password hashing error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	if err := c.db.Model(user).Updates(map[string]any{
		"password":            hashedPassword,
		"password_changed_at": time.Now(),
	}).Error; err != nil {
		log.Error().Err(err).Msg("password change error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Password changed successfully."})
}
