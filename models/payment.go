package models

import "time"

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
	PaymentRefunded   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCard         PaymentMethod = "card"
	MethodCMI          PaymentMethod = "cmi"
	MethodCashPlus     PaymentMethod = "cashplus"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
)

const CurrencyMAD = "MAD"

type Payment struct {
	ID            string        `bson:"id" json:"id"`
	BookingID     string        `bson:"bookingId" json:"bookingId"`
	ClientID      string        `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Amount        float64       `bson:"amount" json:"amount"`
	Currency      string        `bson:"currency" json:"currency"`
	Method        PaymentMethod `bson:"method" json:"method"`
	Status        PaymentStatus `bson:"status" json:"status"`
	GatewayRef    string        `bson:"gatewayRef,omitempty" json:"gatewayRef,omitempty"`
	TransactionID string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	ClientSecret  string        `bson:"-" json:"clientSecret,omitempty"` // returned once at checkout, never stored
	RedirectURL   string        `bson:"redirectUrl,omitempty" json:"redirectUrl,omitempty"`
	Instructions  string        `bson:"instructions,omitempty" json:"instructions,omitempty"`
	FailureReason string        `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
	CompletedAt   *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// ChargeRequest is what a gateway needs to start collecting a payment.
type ChargeRequest struct {
	PaymentID   string
	BookingID   string
	Amount      float64
	Currency    string
	Description string
}

// ChargeResult is the gateway's answer to a charge request.
type ChargeResult struct {
	Status        PaymentStatus
	GatewayRef    string
	TransactionID string
	ClientSecret  string
	RedirectURL   string
	Instructions  string
}

type CheckoutRequest struct {
	BookingID string        `json:"bookingId"`
	Method    PaymentMethod `json:"method"`
}
