package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/Njoroge/sokoni-api/models"
	"github.com/Njoroge/sokoni-api/utils"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const otpTTL = 10 * time.Minute

type OTPService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewOTPService(db *gorm.DB, mailer Mailer) *OTPService {
	return &OTPService{db: db, mailer: mailer}
}

func hashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue generates a fresh 6-digit code, stores only its hash with a
// 10-minute expiry and emails the plaintext to the user. Any previously
// issued, unconsumed code is overwritten.
func (s *OTPService) Issue(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}

	expiry := time.Now().Add(otpTTL)
	if err := s.db.Model(&user).Updates(map[string]any{
		"otp_hash":       hashOTP(code),
		"otp_expires_at": expiry,
	}).Error; err != nil {
		return err
	}

	data := utils.EmailData{
		Name:    user.FirstName,
		Message: "Use the code below to confirm your order. It expires in 10 minutes.",
		Code:    code,
	}
	if err := s.mailer.Send(user.Email, "Your Order Confirmation Code", data, "otp_code.html"); err != nil {
		log.Error().Err(err).Uint("userId", userID).Msg("failed to send OTP email")
	}

	return nil
}

// Verify checks the submitted code against the stored hash in constant time.
// Wrong code and expired code produce the same error. The stored hash is not
// cleared here; Clear runs only after the order is durable so a failed
// checkout does not burn the code.
func (s *OTPService) Verify(userID uint, submittedCode string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}

	if user.OTPHash == "" || user.OTPExpiresAt == nil {
		return ErrInvalidOTP
	}
	if !time.Now().Before(*user.OTPExpiresAt) {
		return ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(hashOTP(submittedCode)), []byte(user.OTPHash)) != 1 {
		return ErrInvalidOTP
	}

	return nil
}

// Clear consumes the OTP after a successful checkout.
func (s *OTPService) Clear(userID uint) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"otp_hash":       "",
		"otp_expires_at": nil,
	}).Error
}
