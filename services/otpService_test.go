package services

import (
	"testing"
	"time"

	"github.com/Njoroge/sokoni-api/models"
)

func issueAndCapture(t *testing.T, svc *OTPService, mailer *fakeMailer, userID uint) string {
	t.Helper()
	if err := svc.Issue(userID); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	email, ok := mailer.last()
	if !ok {
		t.Fatal("expected OTP email to be sent")
	}
	if len(email.Data.Code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", email.Data.Code)
	}
	return email.Data.Code
}

func TestOTPIssueAndVerify(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	mailer := &fakeMailer{}
	svc := NewOTPService(db, mailer)

	code := issueAndCapture(t, svc, mailer, user.ID)

	if err := svc.Verify(user.ID, code); err != nil {
		t.Fatalf("correct code should verify: %v", err)
	}

	// Verification does not consume; Clear does.
	if err := svc.Verify(user.ID, code); err != nil {
		t.Fatalf("code should still be valid before Clear: %v", err)
	}
	if err := svc.Clear(user.ID); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := svc.Verify(user.ID, code); err != ErrInvalidOTP {
		t.Fatalf("replay after Clear should fail with ErrInvalidOTP, got %v", err)
	}
}

func TestOTPWrongCode(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	mailer := &fakeMailer{}
	svc := NewOTPService(db, mailer)

	code := issueAndCapture(t, svc, mailer, user.ID)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := svc.Verify(user.ID, wrong); err != ErrInvalidOTP {
		t.Fatalf("wrong code should fail with ErrInvalidOTP, got %v", err)
	}
}

func TestOTPExpiry(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	mailer := &fakeMailer{}
	svc := NewOTPService(db, mailer)

	code := issueAndCapture(t, svc, mailer, user.ID)

	expired := time.Now().Add(-time.Minute)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("otp_expires_at", expired).Error; err != nil {
		t.Fatalf("failed to expire OTP: %v", err)
	}

	if err := svc.Verify(user.ID, code); err != ErrInvalidOTP {
		t.Fatalf("expired code should fail with ErrInvalidOTP even when it matches, got %v", err)
	}
}

func TestOTPReissueOverwritesPrevious(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	mailer := &fakeMailer{}
	svc := NewOTPService(db, mailer)

	first := issueAndCapture(t, svc, mailer, user.ID)
	second := issueAndCapture(t, svc, mailer, user.ID)

	if first != second {
		if err := svc.Verify(user.ID, first); err != ErrInvalidOTP {
			t.Fatalf("overwritten code should no longer verify, got %v", err)
		}
	}
	if err := svc.Verify(user.ID, second); err != nil {
		t.Fatalf("latest code should verify: %v", err)
	}
}

func TestOTPVerifyWithoutIssue(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	svc := NewOTPService(db, &fakeMailer{})

	if err := svc.Verify(user.ID, "123456"); err != ErrInvalidOTP {
		t.Fatalf("verify without issuance should fail with ErrInvalidOTP, got %v", err)
	}
}
