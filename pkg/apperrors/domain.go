package apperrors

import (
	"net/http"
)

// --- Пожертвования ---

// ErrInvalidDonationAmount - сумма не указана, не число, не положительна после округления до центов или больше лимита.
var ErrInvalidDonationAmount = New(
	CodeValidationFailed,
	"donation",
	"Donation amount must be a positive number up to 999999.99",
	http.StatusBadRequest,
).WithDetails(map[string]string{"donationAmount": "Must be between 0.01 and 999999.99"})

// ErrDonorEmailRequired - не указан email донора.
var ErrDonorEmailRequired = New(
	CodeValidationFailed,
	"donation",
	"Donor email is required",
	http.StatusBadRequest,
).WithDetails(map[string]string{"email": "This field is required"})

// PaymentProviderError - ошибка вызова платежного процессора (500, детали только в логе).
func PaymentProviderError(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "payment", "Payment provider error", http.StatusInternalServerError)
}

// WebhookSignatureError - вебхук не прошел проверку подписи или не разобран.
func WebhookSignatureError(err error) *AppError {
	return Wrap(err, CodeInvalidSignature, "webhook", "Webhook signature verification failed", http.StatusBadRequest)
}

// --- Аккаунты и сессии администраторов ---

// ErrInvalidCredentials возвращается и для неизвестного логина, и для неверного пароля.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid username or password",
	http.StatusUnauthorized,
)

// ErrAuthenticationRequired - нет валидной админ-сессии.
var ErrAuthenticationRequired = NewUnauthorizedError("Authentication required")

// ErrSetupCompleted - регистрация без сессии после создания первого администратора.
var ErrSetupCompleted = NewUnauthorizedError("Admin account already exists; log in to create more")

// ErrUsernameTaken - логин уже занят.
var ErrUsernameTaken = New(
	CodeAlreadyExists,
	"auth",
	"Username already taken",
	http.StatusConflict,
)
