package payment

import (
	"context"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/models"
)

// Gateway opens a payment flow for a committed booking. Invoked
// post-commit, fire-and-forget; failures are logged and never affect
// booking state.
type Gateway interface {
	StartCheckout(ctx context.Context, ap *models.Appointment, svc *models.Service) error
}

type MercadoPagoGateway struct {
	prefs preference.Client
	log   *zap.Logger
}

func NewMercadoPagoGateway(accessToken string, log *zap.Logger) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPagoGateway{
		prefs: preference.NewClient(cfg),
		log:   log,
	}, nil
}

func (g *MercadoPagoGateway) StartCheckout(ctx context.Context, ap *models.Appointment, svc *models.Service) error {
	req := preference.Request{
		ExternalReference: ap.PublicCode,
		Items: []preference.ItemRequest{
			{
				Title:       svc.Name,
				Description: svc.Description,
				Quantity:    1,
				UnitPrice:   ap.Price,
			},
		},
	}

	resp, err := g.prefs.Create(ctx, req)
	if err != nil {
		return err
	}

	g.log.Info("payment_preference_created",
		zap.Uint("appointment_id", ap.ID),
		zap.String("preference_id", resp.ID),
	)
	return nil
}

// NopGateway skips payment entirely (no access token configured).
type NopGateway struct{}

func (NopGateway) StartCheckout(ctx context.Context, ap *models.Appointment, svc *models.Service) error {
	return nil
}
