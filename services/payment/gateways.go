package payment

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"

	"m3allem/models"
)

// CMIGateway sends the client to the CMI hosted payment page. The bank calls back
// through Confirm or Fail.
type CMIGateway struct {
	GatewayURL string
}

func (g *CMIGateway) Method() models.PaymentMethod { return models.MethodCMI }

func (g *CMIGateway) Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error) {
	ref := "CMI-" + req.PaymentID
	q := url.Values{}
	q.Set("oid", ref)
	q.Set("amount", fmt.Sprintf("%.2f", req.Amount))
	q.Set("currency", "504") // ISO 4217 numeric code of MAD
	return models.ChargeResult{
		Status:       models.PaymentPending,
		GatewayRef:   ref,
		RedirectURL:  g.GatewayURL + "?" + q.Encode(),
		Instructions: "Vous allez être redirigé vers la page de paiement sécurisée CMI.",
	}, nil
}

// Refund is settled by the acquiring bank outside the platform.
func (g *CMIGateway) Refund(ctx context.Context, p models.Payment) error { return nil }

// CashPlusGateway issues a code the client pays at a CashPlus agency.
type CashPlusGateway struct{}

func (g *CashPlusGateway) Method() models.PaymentMethod { return models.MethodCashPlus }

func (g *CashPlusGateway) Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error) {
	code := agencyCode(req.PaymentID)
	return models.ChargeResult{
		Status:     models.PaymentPending,
		GatewayRef: code,
		Instructions: fmt.Sprintf("Présentez le code %s dans une agence CashPlus sous 48h. Montant : %.2f %s.",
			code, req.Amount, req.Currency),
	}, nil
}

func (g *CashPlusGateway) Refund(ctx context.Context, p models.Payment) error { return nil }

// BankTransferGateway asks for a transfer to the platform account with a reference.
type BankTransferGateway struct {
	RIB string
}

func (g *BankTransferGateway) Method() models.PaymentMethod { return models.MethodBankTransfer }

func (g *BankTransferGateway) Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error) {
	ref := "VIR-" + agencyCode(req.PaymentID)
	return models.ChargeResult{
		Status:     models.PaymentPending,
		GatewayRef: ref,
		Instructions: fmt.Sprintf("Effectuez un virement de %.2f %s sur le RIB %s en indiquant la référence %s.",
			req.Amount, req.Currency, g.RIB, ref),
	}, nil
}

func (g *BankTransferGateway) Refund(ctx context.Context, p models.Payment) error { return nil }

// CashGateway records that the client pays the technician on site.
type CashGateway struct{}

func (g *CashGateway) Method() models.PaymentMethod { return models.MethodCash }

func (g *CashGateway) Charge(ctx context.Context, req models.ChargeRequest) (models.ChargeResult, error) {
	return models.ChargeResult{
		Status:       models.PaymentPending,
		Instructions: fmt.Sprintf("Réglez %.2f %s en espèces au technicien à la fin de l'intervention.", req.Amount, req.Currency),
	}, nil
}

func (g *CashGateway) Refund(ctx context.Context, p models.Payment) error { return nil }

// agencyCode derives a stable 10-digit reference from the payment id.
func agencyCode(paymentID string) string {
	h := fnv.New64a()
	h.Write([]byte(paymentID))
	return fmt.Sprintf("%010d", h.Sum64()%10_000_000_000)
}
