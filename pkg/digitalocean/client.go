package digitalocean

import (
	"context"
	"fmt"

	"github.com/digitalocean/godo"
)

// Balance reports the hosting account spend shown on the activity dashboard.
type Balance struct {
	MonthToDate    string `json:"monthToDate"`
	AccountBalance string `json:"accountBalance"`
}

type client struct {
	api *godo.Client
}

func NewClient(token string) *client {
	return &client{
		api: godo.NewFromToken(token),
	}
}

func (c *client) GetBalance(ctx context.Context) (*Balance, error) {
	b, _, err := c.api.Balance.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching balance: %v", err)
	}

	return &Balance{
		MonthToDate:    b.MonthToDateBalance,
		AccountBalance: b.AccountBalance,
	}, nil
}
