package finance

import (
	"context"
	"errors"

	"github.com/Veraticus/finanzas/internal/api"
	"github.com/Veraticus/finanzas/internal/common"
	"github.com/Veraticus/finanzas/internal/model"
	"golang.org/x/sync/errgroup"
)

// Overview is everything the dashboard shows on one screen.
type Overview struct {
	Categories []model.Category
	Page       model.MovementPage
	Balance    model.UserBalance
}

// Service bundles the three resource clients.
type Service struct {
	Movements  *Movements
	Categories *Categories
	Balance    *Balance
}

// NewService builds all resource clients on one pipeline.
func NewService(client *api.Client) *Service {
	return &Service{
		Movements:  NewMovements(client),
		Categories: NewCategories(client),
		Balance:    NewBalance(client),
	}
}

// LoadOverview fetches categories, one page of movements and the balance
// concurrently. Each request runs to completion on ctx regardless of how its
// siblings end, so a rejected token is always seen by the pipeline. When
// several fail, the most significant error is returned: a session rejection
// first, then transport failures, then anything else.
func (s *Service) LoadOverview(ctx context.Context, filters *model.MovementFilters) (Overview, error) {
	var (
		out  Overview
		g    errgroup.Group
		errs [3]error
	)

	g.Go(func() error {
		out.Categories, errs[0] = s.Categories.List(ctx)
		return nil
	})
	g.Go(func() error {
		out.Page, errs[1] = s.Movements.ListPage(ctx, filters)
		return nil
	})
	g.Go(func() error {
		out.Balance, errs[2] = s.Balance.GetMine(ctx)
		return nil
	})
	_ = g.Wait()

	if err := mostSignificant(errs[:]); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// errorPriority orders failure kinds from most to least significant.
var errorPriority = []error{
	common.ErrUnauthorized,
	common.ErrBackendUnavailable,
	common.ErrTimeout,
	common.ErrServer,
}

func mostSignificant(errs []error) error {
	for _, kind := range errorPriority {
		for _, err := range errs {
			if errors.Is(err, kind) {
				return err
			}
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
