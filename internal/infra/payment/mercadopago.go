package payment

import (
	"context"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// MercadoPagoLinker gera links de pagamento de venda de pacote via
// preferência de checkout
type MercadoPagoLinker struct {
	prefs preference.Client
}

func NewMercadoPagoLinker(accessToken string) (*MercadoPagoLinker, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPagoLinker{
		prefs: preference.NewClient(cfg),
	}, nil
}

func (m *MercadoPagoLinker) CreateLink(
	ctx context.Context,
	title string,
	amount float64,
	reference string,
) (string, error) {

	resp, err := m.prefs.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:     title,
				Quantity:  1,
				UnitPrice: amount,
			},
		},
		ExternalReference: reference,
	})
	if err != nil {
		return "", err
	}

	return resp.InitPoint, nil
}
