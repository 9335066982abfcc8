package models

// PaymentStatus повторяет строку статуса от платежного процессора.
// Набор открытый: любое значение от процессора сохраняется как есть.
type PaymentStatus string

const (
	PaymentStatusPending               PaymentStatus = "pending"
	PaymentStatusSucceeded             PaymentStatus = "succeeded"
	PaymentStatusFailed                PaymentStatus = "failed"
	PaymentStatusCanceled              PaymentStatus = "canceled"
	PaymentStatusProcessing            PaymentStatus = "processing"
	PaymentStatusRequiresAction        PaymentStatus = "requires_action"
	PaymentStatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentStatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	PaymentStatusRequiresCapture       PaymentStatus = "requires_capture"
)

func (s PaymentStatus) String() string {
	return string(s)
}
