package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"m3allem/database/repository"
	"m3allem/models"
	"m3allem/services/notification"
	"m3allem/utils"

	"go.uber.org/zap"
)

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending:    {models.PaymentProcessing, models.PaymentCompleted, models.PaymentFailed, models.PaymentCancelled},
	models.PaymentProcessing: {models.PaymentCompleted, models.PaymentFailed, models.PaymentCancelled},
	models.PaymentCompleted:  {models.PaymentRefunded},
}

func canTransition(from, to models.PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DefaultPaymentService implements PaymentService. Notifier and Technicians are optional.
type DefaultPaymentService struct {
	Repo          repository.PaymentRepository
	Bookings      Bookings
	Technicians   repository.TechnicianRepository
	Gateways      map[models.PaymentMethod]Gateway
	Notifier      notification.NotificationService
	WebhookSecret string
	Clock         utils.Clock
	NewID         utils.IDGenerator
	Logger        *zap.Logger

	mu sync.Mutex // serializes status changes
}

func NewDefaultPaymentService(
	repo repository.PaymentRepository,
	bookings Bookings,
	technicians repository.TechnicianRepository,
	gateways []Gateway,
	notifier notification.NotificationService,
	webhookSecret string,
	clock utils.Clock,
	newID utils.IDGenerator,
	logger *zap.Logger,
) *DefaultPaymentService {
	byMethod := make(map[models.PaymentMethod]Gateway, len(gateways))
	for _, g := range gateways {
		byMethod[g.Method()] = g
	}
	if clock == nil {
		clock = utils.SystemClock{}
	}
	if newID == nil {
		newID = utils.NewID
	}
	return &DefaultPaymentService{
		Repo:          repo,
		Bookings:      bookings,
		Technicians:   technicians,
		Gateways:      byMethod,
		Notifier:      notifier,
		WebhookSecret: webhookSecret,
		Clock:         clock,
		NewID:         newID,
		Logger:        utils.LoggerOr(logger),
	}
}

func (s *DefaultPaymentService) Checkout(ctx context.Context, req models.CheckoutRequest, clientID string) (*models.Payment, error) {
	// 1. Validate
	if strings.TrimSpace(req.BookingID) == "" {
		return nil, models.NewValidationError("bookingId", "booking is required")
	}
	gateway, ok := s.Gateways[req.Method]
	if !ok {
		return nil, models.NewValidationError("method", fmt.Sprintf("payment method %q is not available", req.Method))
	}

	// 2. Check the booking can be paid
	b, err := s.Bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingNoShow {
		return nil, fmt.Errorf("booking %s is %s: %w", b.ID, b.Status, models.ErrConflict)
	}
	if clientID != "" && b.ClientID != "" && clientID != b.ClientID {
		return nil, fmt.Errorf("booking %s belongs to another client: %w", b.ID, models.ErrConflict)
	}
	amount := b.Cost()
	if amount <= 0 {
		return nil, models.NewValidationError("amount", "booking has no amount to pay")
	}
	existing, err := s.Repo.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments of booking %s: %w", b.ID, err)
	}
	for _, p := range existing {
		if p.Status == models.PaymentCompleted {
			return nil, fmt.Errorf("booking %s is already paid: %w", b.ID, models.ErrConflict)
		}
	}

	// 3. Start the charge
	now := s.Clock.Now()
	p := models.Payment{
		ID:        s.NewID(),
		BookingID: b.ID,
		ClientID:  b.ClientID,
		Amount:    amount,
		Currency:  models.CurrencyMAD,
		Method:    req.Method,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := gateway.Charge(ctx, models.ChargeRequest{
		PaymentID:   p.ID,
		BookingID:   b.ID,
		Amount:      amount,
		Currency:    p.Currency,
		Description: fmt.Sprintf("Intervention %s (%s)", b.Service, b.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("checkout of booking %s failed: %w", b.ID, err)
	}
	p.Status = result.Status
	if p.Status == "" || p.Status == models.PaymentCompleted {
		// Completion only happens through Confirm so the cascade runs once.
		p.Status = models.PaymentPending
	}
	p.GatewayRef = result.GatewayRef
	p.TransactionID = result.TransactionID
	p.RedirectURL = result.RedirectURL
	p.Instructions = result.Instructions

	// 4. Persist
	if err := s.Repo.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}
	p.ClientSecret = result.ClientSecret
	s.Logger.Info("Checkout: payment started",
		zap.String("paymentID", p.ID), zap.String("bookingID", b.ID),
		zap.String("method", string(p.Method)), zap.Float64("amount", p.Amount))

	if result.Status == models.PaymentCompleted {
		return s.Confirm(ctx, p.ID, result.TransactionID)
	}
	return &p, nil
}

func (s *DefaultPaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultPaymentService) ListForBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	return s.Repo.ListByBooking(ctx, bookingID)
}

// Confirm completes the payment, accepts a pending booking and tells both parties.
func (s *DefaultPaymentService) Confirm(ctx context.Context, id, transactionID string) (*models.Payment, error) {
	p, changed, err := s.complete(ctx, id, transactionID)
	if err != nil || !changed {
		return p, err
	}
	s.Logger.Info("Confirm: payment completed", zap.String("paymentID", p.ID), zap.String("bookingID", p.BookingID))

	// Cascade
	b, err := s.Bookings.GetBooking(ctx, p.BookingID)
	if err != nil {
		s.Logger.Error("Confirm: booking lookup failed", zap.String("bookingID", p.BookingID), zap.Error(err))
		return p, nil
	}
	if b.Status == models.BookingPending {
		if _, err := s.Bookings.AcceptBooking(ctx, b.ID); err != nil {
			s.Logger.Error("Confirm: booking not accepted", zap.String("bookingID", b.ID), zap.Error(err))
		}
	}
	message := fmt.Sprintf("Paiement de %.2f %s reçu pour la réservation %s.", p.Amount, p.Currency, b.ID)
	s.notify(ctx, b.ClientID, models.NotifyPaymentCompleted, b.ID, "Paiement confirmé", message)
	s.notify(ctx, s.technicianUserID(ctx, b.TechnicianID), models.NotifyPaymentCompleted, b.ID, "Paiement confirmé", message)
	return p, nil
}

// complete reports false when the payment was already completed.
func (s *DefaultPaymentService) complete(ctx context.Context, id, transactionID string) (*models.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p.Status == models.PaymentCompleted {
		return p, false, nil
	}
	if !canTransition(p.Status, models.PaymentCompleted) {
		return nil, false, transitionError(p.Status, models.PaymentCompleted)
	}
	now := s.Clock.Now()
	p.Status = models.PaymentCompleted
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	p.CompletedAt = &now
	p.UpdatedAt = now
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, false, fmt.Errorf("failed to complete payment %s: %w", id, err)
	}
	return p, true, nil
}

func (s *DefaultPaymentService) Fail(ctx context.Context, id, reason string) (*models.Payment, error) {
	reason = strings.TrimSpace(reason)
	p, err := s.move(ctx, id, models.PaymentFailed, func(p *models.Payment) {
		p.FailureReason = reason
	})
	if err != nil {
		return nil, err
	}
	message := "Votre paiement n'a pas abouti."
	if reason != "" {
		message += " Motif : " + reason
	}
	s.notify(ctx, p.ClientID, models.NotifyPaymentFailed, p.BookingID, "Échec du paiement", message)
	return p, nil
}

func (s *DefaultPaymentService) Cancel(ctx context.Context, id string) (*models.Payment, error) {
	return s.move(ctx, id, models.PaymentCancelled, nil)
}

func (s *DefaultPaymentService) Refund(ctx context.Context, id string) (*models.Payment, error) {
	return s.move(ctx, id, models.PaymentRefunded, nil)
}

// move applies a status change. Refunds go through the gateway first.
func (s *DefaultPaymentService) move(ctx context.Context, id string, to models.PaymentStatus, apply func(p *models.Payment)) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(p.Status, to) {
		return nil, transitionError(p.Status, to)
	}
	if to == models.PaymentRefunded {
		gateway, ok := s.Gateways[p.Method]
		if !ok {
			return nil, models.NewValidationError("method", fmt.Sprintf("payment method %q is not available", p.Method))
		}
		if err := gateway.Refund(ctx, *p); err != nil {
			return nil, fmt.Errorf("refund of payment %s failed: %w", id, err)
		}
	}

	p.Status = to
	p.UpdatedAt = s.Clock.Now()
	if apply != nil {
		apply(p)
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	s.Logger.Info("payment status changed", zap.String("paymentID", id), zap.String("status", string(to)))
	return p, nil
}

func (s *DefaultPaymentService) technicianUserID(ctx context.Context, technicianID string) string {
	if s.Technicians == nil || technicianID == "" {
		return ""
	}
	t, err := s.Technicians.GetByID(ctx, technicianID)
	if err != nil {
		return ""
	}
	return t.UserID
}

func (s *DefaultPaymentService) notify(ctx context.Context, userID, kind, bookingID, title, message string) {
	if s.Notifier == nil || userID == "" {
		return
	}
	if _, err := s.Notifier.Notify(ctx, models.Notification{
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		BookingID: bookingID,
	}); err != nil {
		s.Logger.Warn("payment notification not sent", zap.String("userID", userID), zap.Error(err))
	}
}

func transitionError(from, to models.PaymentStatus) error {
	return &models.TransitionError{Entity: "payment", From: string(from), To: string(to)}
}
