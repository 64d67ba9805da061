// Package password — жизненный цикл паролей: админский сброс с временным
// паролем, самостоятельная смена и email-сброс по одноразовому коду.
package password

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"identity/internal/apperr"
	"identity/internal/logs"
	"identity/internal/mail"
	"identity/internal/models"
)

// Единый ответ на любую проблему с кодом: не раскрываем, что именно
// не так (нет кода, просрочен, исчерпаны попытки, неверный).
var ErrInvalidOTP = apperr.Wrap(apperr.ErrValidation, "invalid email or OTP code")

const (
	minPasswordLength = 8
	otpDigits         = 6
	tempPassAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
)

type Options struct {
	OTPTTL         time.Duration // 15 минут по умолчанию
	MaxOTPAttempts int           // 3
	TempPassLength int           // 12
}

type Service struct {
	db     *gorm.DB
	mailer mail.Sender
	opts   Options
}

func New(db *gorm.DB, mailer mail.Sender, opts Options) *Service {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 15 * time.Minute
	}
	if opts.MaxOTPAttempts <= 0 {
		opts.MaxOTPAttempts = 3
	}
	if opts.TempPassLength <= 0 {
		opts.TempPassLength = 12
	}
	return &Service{db: db, mailer: mailer, opts: opts}
}

// AdminReset выдаёт временный пароль пользователю своей компании.
// Plaintext возвращается ровно один раз и нигде не сохраняется.
func (s *Service) AdminReset(ctx context.Context, actorCompanyID, targetID string) (string, error) {
	tempPass, err := randomString(tempPassAlphabet, s.opts.TempPassLength)
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		q := tx.Where("id = ?", targetID)
		if actorCompanyID != "" {
			// чужая компания → not found, существование не раскрываем
			q = q.Where("company_id = ?", actorCompanyID)
		}
		if err := q.First(&u).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.ErrNotFound
			}
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"hashed_password":         string(hash),
			"password_reset_required": true,
			"last_password_change":    now,
		}).Error
	})
	if err != nil {
		return "", err
	}
	return tempPass, nil
}

// SelfChange меняет собственный пароль после проверки текущего.
func (s *Service) SelfChange(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperr.Wrap(apperr.ErrValidation,
			"new password must be at least %d characters", minPasswordLength)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Where("id = ?", userID).First(&u).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.ErrNotFound
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(currentPassword)) != nil {
			return apperr.Wrap(apperr.ErrAuth, "current password is incorrect")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"hashed_password":         string(hash),
			"password_reset_required": false,
			"last_password_change":    now,
		}).Error
	})
}

// RequestReset всегда «успешен» для вызывающего: существование email
// не раскрывается ни ответом, ни таймингом ошибок. Прежние коды
// вытесняются новым.
func (s *Service) RequestReset(ctx context.Context, email string) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logs.Logger.Errorf("password reset lookup failed: %v", err)
		}
		return
	}

	code, err := randomString("0123456789", otpDigits)
	if err != nil {
		logs.Logger.Errorf("otp generation failed: %v", err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		logs.Logger.Errorf("otp hash failed: %v", err)
		return
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetOTP{}).
			Where("user_id = ? AND used_at IS NULL", u.ID).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordResetOTP{
			UserID:    u.ID,
			CodeHash:  string(hash),
			ExpiresAt: now.Add(s.opts.OTPTTL),
		}).Error
	})
	if err != nil {
		logs.Logger.Errorf("otp persist failed for user %s: %v", u.ID, err)
		return
	}

	subject, htmlBody, textBody := mail.PasswordResetEmail(
		code, u.FirstName, int(s.opts.OTPTTL.Minutes()))
	if err := s.mailer.Send(u.Email, subject, htmlBody, textBody); err != nil {
		logs.Logger.Errorf("reset email delivery failed for user %s: %v", u.ID, err)
		return
	}
	logs.Logger.Infof("password reset OTP issued for user %s", u.ID)
}

// ConfirmReset проверяет код и ставит новый пароль. Код одноразовый;
// после трёх неудач становится недействительным навсегда, даже если
// четвёртая попытка верна.
func (s *Service) ConfirmReset(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperr.Wrap(apperr.ErrValidation,
			"new password must be at least %d characters", minPasswordLength)
	}

	var u models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInvalidOTP
		}
		return err
	}

	now := time.Now().UTC()
	var otp models.PasswordResetOTP
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL AND expires_at > ?", u.ID, now).
		Order("created_at DESC").First(&otp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrInvalidOTP
		}
		return err
	}
	if !otp.Usable(now, s.opts.MaxOTPAttempts) {
		return ErrInvalidOTP
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		// счётчик попыток фиксируем вне транзакции подтверждения —
		// он обязан пережить отказ
		if err := s.db.WithContext(ctx).Model(&models.PasswordResetOTP{}).
			Where("id = ?", otp.ID).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		if otp.Attempts+1 >= s.opts.MaxOTPAttempts {
			logs.Logger.Warnf("max OTP attempts reached for user %s", u.ID)
		}
		return ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// used_at IS NULL в предикате гарантирует ровно одно потребление
		// кода при конкурентных подтверждениях
		res := tx.Model(&models.PasswordResetOTP{}).
			Where("id = ? AND used_at IS NULL", otp.ID).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOTP
		}
		return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
			"hashed_password":         string(hash),
			"password_reset_required": false,
			"last_password_change":    now,
		}).Error
	})
}

// VerifyPassword сверяет email/пароль, обновляет last_login_at при успехе.
func (s *Service) VerifyPassword(ctx context.Context, email, pass string) (*models.User, bool) {
	var u models.User
	norm := strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", norm).First(&u).Error; err != nil {
		return nil, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(pass)) != nil {
		return nil, false
	}
	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Update("last_login_at", now).Error; err != nil {
		logs.Logger.Warnf("last_login_at update failed for user %s: %v", u.ID, err)
	}
	return &u, true
}

// HashPassword — bcrypt-хэш для создания пользователей.
func HashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", apperr.Wrap(apperr.ErrValidation,
			"password must be at least %d characters", minPasswordLength)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(h), err
}

func randomString(alphabet string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[v.Int64()]
	}
	return string(out), nil
}
