package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/Njoroge/sokoni-api/config"
	"github.com/Njoroge/sokoni-api/models"
	"github.com/Njoroge/sokoni-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	resetTokenTTL = time.Hour

	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgUserAlreadyExists     = "user with this email already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid email or password"
	msgAccountNotActivated   = "Account not activated, check your email to activate your account."
	msgFailedToGenerateToken = "failed to generate token"
	msgInternalServerError   = "Internal server error"
	msgInvalidActivationLink = "Invalid or expired activation link"
	msgActivationSuccess     = "account has been activated successfully."
	msgResetLinkSent         = "Check your email for a password reset link."
	msgUserCreated           = "User created successfully. Check your email to activate your account."
	msgUserNotFound          = "user with this email does not exist"
	msgResetTokenError       = "There was an error trying to generate password reset link. Try again later."
	msgUnableToSaveToken     = "unable to save reset token."
	msgUnableToResetPassword = "unable to reset password"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

type AuthController struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer *utils.Mailer
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer) *AuthController {
	return &AuthController{db: db, cfg: cfg, mailer: mailer}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (c *AuthController) generateJWT(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour * 24 * 30).Unix(),
	})
	return token.SignedString([]byte(c.cfg.JWTSecret))
}

func (c *AuthController) sendAccountVerificationEmail(user models.User, activationToken string) error {
	emailData := utils.EmailData{
		Name:      user.FirstName,
		Message:   "Thank you for signing up! Click the button below to verify your account.",
		ActionURL: c.cfg.FrontendURL + "/auth/verify-email?token=" + url.QueryEscape(activationToken),
	}
	return c.mailer.Send(user.Email, "Account Verification", emailData, "verify_email.html")
}

func (c *AuthController) sendPasswordResetEmail(user models.User, resetToken string) error {
	emailData := utils.EmailData{
		Name:      user.FirstName,
		Message:   "You requested a password reset. Click the button below to reset your password.",
		ActionURL: c.cfg.FrontendURL + "/auth/reset-password?token=" + url.QueryEscape(resetToken),
	}
	return c.mailer.Send(user.Email, "Account Password Reset", emailData, "reset_password.html")
}

// Signup handles user registration
func (c *AuthController) Signup(ctx *gin.Context) {
	var signUpData struct {
		FirstName string `json:"firstName" binding:"required"`
		LastName  string `json:"lastName" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var existing models.User
	result := c.db.Where("email = ?", signUpData.Email).Find(&existing)
	if result.Error != nil {
		log.Error().Err(result.Error).Msg("database error during user check")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected > 0 {
		sendErrorResponse(ctx, http.StatusConflict, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	activationToken, err := utils.GenerateCode(16)
	if err != nil {
		log.Error().Err(err).Msg("token generation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	user := models.User{
		FirstName:              signUpData.FirstName,
		LastName:               signUpData.LastName,
		Email:                  signUpData.Email,
		Password:               hashedPassword,
		Role:                   models.RoleCustomer,
		AccountActivated:       false,
		AccountActivationToken: activationToken,
	}
	if result := c.db.Create(&user); result.Error != nil {
		log.Error().Err(result.Error).Msg("user creation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if err := c.sendAccountVerificationEmail(user, activationToken); err != nil {
		log.Error().Err(err).Msg("error sending verification email")
		// Continue despite email error, but log it
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": msgUserCreated})
}

// Login handles user authentication
func (c *AuthController) Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	if err := c.db.Where("email = ?", loginData.Email).First(&user).Error; err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	// Social-only accounts have no password to check.
	if user.Password == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if !user.AccountActivated {
		sendErrorResponse(ctx, http.StatusBadRequest, msgAccountNotActivated)
		return
	}

	tokenString, err := c.generateJWT(user)
	if err != nil {
		log.Error().Err(err).Msg("JWT generation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString})
}

// SocialLogin signs a user in by provider identity, creating the account on
// first login. Social accounts are activated immediately.
func (c *AuthController) SocialLogin(ctx *gin.Context) {
	var socialData struct {
		Provider   string `json:"provider" binding:"required"`
		ProviderID string `json:"providerId" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
	}
	if err := ctx.ShouldBindJSON(&socialData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	err := c.db.Where("provider = ? AND provider_id = ?", socialData.Provider, socialData.ProviderID).First(&user).Error
	if err != nil {
		// Link to an existing local account by email, or create a new one.
		result := c.db.Where("email = ?", socialData.Email).Find(&user)
		if result.Error != nil {
			log.Error().Err(result.Error).Msg("database error during social login")
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}
		if result.RowsAffected == 0 {
			user = models.User{
				FirstName:        socialData.FirstName,
				LastName:         socialData.LastName,
				Email:            socialData.Email,
				Role:             models.RoleCustomer,
				AccountActivated: true,
			}
		}
		user.Provider = &socialData.Provider
		user.ProviderID = &socialData.ProviderID
		user.AccountActivated = true
		if err := c.db.Save(&user).Error; err != nil {
			log.Error().Err(err).Msg("social account save error")
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
			return
		}
	}

	tokenString, err := c.generateJWT(user)
	if err != nil {
		log.Error().Err(err).Msg("JWT generation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString})
}

// ActivateAccount activates a user account using the activation token
func (c *AuthController) ActivateAccount(ctx *gin.Context) {
	activationToken := ctx.Param("activationToken")

	result := c.db.Model(&models.User{}).
		Where("account_activation_token = ? AND account_activation_token != ''", activationToken).
		Updates(map[string]any{
			"account_activated":        true,
			"account_activation_token": "",
		})

	if result.Error != nil {
		log.Error().Err(result.Error).Msg("account activation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidActivationLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgActivationSuccess})
}

// SendPasswordResetLink sends a password reset link to the user's email
func (c *AuthController) SendPasswordResetLink(ctx *gin.Context) {
	var forgotPasswordData struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&forgotPasswordData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	if err := c.db.Where("email = ?", forgotPasswordData.Email).First(&user).Error; err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserNotFound)
		return
	}

	passwordResetToken, err := utils.GenerateCode(16)
	if err != nil {
		log.Error().Err(err).Msg("reset token generation error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgResetTokenError)
		return
	}

	expiry := time.Now().Add(resetTokenTTL)
	if result := c.db.Model(&user).Updates(map[string]any{
		"password_reset_token":   passwordResetToken,
		"reset_token_expires_at": expiry,
	}); result.Error != nil {
		log.Error().Err(result.Error).Msg("error saving reset token")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgUnableToSaveToken)
		return
	}

	if err := c.sendPasswordResetEmail(user, passwordResetToken); err != nil {
		log.Error().Err(err).Msg("error sending password reset email")
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
}

// ResetPassword resets a user's password using a reset token
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var resetPasswordData struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&resetPasswordData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	hashedPassword, err := hashPassword(resetPasswordData.Password)
	if err != nil {
		log.Error().Err(err).Msg("password hashing error")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	resetToken := ctx.Param("resetToken")
	result := c.db.Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_token != '' AND reset_token_expires_at > ?", resetToken, time.Now()).
		Updates(map[string]any{
			"password":               hashedPassword,
			"password_reset_token":   "",
			"reset_token_expires_at": nil,
			"password_changed_at":    time.Now(),
		})

	if result.Error != nil {
		log.Error().Err(result.Error).Msg("error resetting password")
		sendErrorResponse(ctx, http.StatusInternalServerError, msgUnableToResetPassword)
		return
	}

	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidActivationLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Password reset successful"})
}
