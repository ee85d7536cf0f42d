package services

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransClient implements PaymentProcessor over the Midtrans Snap and Core
// APIs. Notification verification follows the recommended flow: ignore the
// delivered body and re-query the transaction status with the server key.
type MidtransClient struct {
	snap snap.Client
	core coreapi.Client
}

func NewMidtransClient(serverKey string, production bool) *MidtransClient {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	c := &MidtransClient{}
	c.snap.New(serverKey, env)
	c.core.New(serverKey, env)
	return c
}

func (c *MidtransClient) CreateTransaction(orderID string, grossAmount int64, customer CustomerDetails) (*PaymentSession, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: grossAmount,
		},
	}
	if customer.Name != "" || customer.Email != "" {
		req.CustomerDetail = &midtrans.CustomerDetails{
			FName: customer.Name,
			Email: customer.Email,
		}
	}

	resp, merr := c.snap.CreateTransaction(req)
	if merr != nil {
		return nil, fmt.Errorf("snap create transaction: %w", merr)
	}
	return &PaymentSession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

func (c *MidtransClient) VerifyNotification(ctx context.Context, orderID string) (*ProcessorNotification, error) {
	status, merr := c.core.CheckTransaction(orderID)
	if merr != nil {
		return nil, fmt.Errorf("check transaction %s: %w", orderID, merr)
	}
	return &ProcessorNotification{
		OrderID:           status.OrderID,
		TransactionID:     status.TransactionID,
		TransactionStatus: status.TransactionStatus,
		FraudStatus:       status.FraudStatus,
	}, nil
}
