// Package inventory manages parties and stocked products.
package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/erp-audit/domain"
	"github.com/fastygo/erp-audit/repository"
	"github.com/fastygo/erp-audit/usecase"
)

const (
	ActionCreateParty   = "Create Party"
	ActionCreateProduct = "Create Product"
	ActionAdjustStock   = "Adjust Stock"
)

type UseCase struct {
	parties  repository.PartyRepository
	products repository.ProductRepository
	audit    usecase.ActionLogger
	logger   *zap.Logger
}

func New(parties repository.PartyRepository, products repository.ProductRepository, audit usecase.ActionLogger, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = usecase.NopActionLogger{}
	}
	return &UseCase{
		parties:  parties,
		products: products,
		audit:    audit,
		logger:   logger,
	}
}

func (uc *UseCase) ListParties(ctx context.Context, kind domain.PartyKind) ([]domain.Party, error) {
	return uc.parties.ListParties(ctx, repository.PartyFilter{Kind: kind})
}

func (uc *UseCase) CreateParty(ctx context.Context, party *domain.Party) (*domain.Party, error) {
	party.ID = ""
	if err := uc.parties.SaveParty(ctx, party); err != nil {
		return nil, err
	}
	uc.audit.LogAction(ctx, ActionCreateParty, domain.ModuleParties,
		fmt.Sprintf("%s %s (%s)", party.Kind, party.Name, party.ID))
	return party, nil
}

func (uc *UseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return uc.products.ListProducts(ctx)
}

func (uc *UseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.ID = ""
	if err := uc.products.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	uc.audit.LogAction(ctx, ActionCreateProduct, domain.ModuleStock,
		fmt.Sprintf("%s %s", product.SKU, product.Name))
	return product, nil
}

// AdjustStock adds delta (negative to remove) to the product's stock.
// Stock never goes below zero.
func (uc *UseCase) AdjustStock(ctx context.Context, id string, delta int64) (*domain.Product, error) {
	product, err := uc.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	next := product.CurrentStock + delta
	if next < 0 {
		return nil, domain.Invalidf("stock of %s cannot go below zero (have %d, delta %d)", product.SKU, product.CurrentStock, delta)
	}
	before := product.Health()
	product.CurrentStock = next
	if err := uc.products.SaveProduct(ctx, product); err != nil {
		return nil, err
	}

	uc.audit.LogAction(ctx, ActionAdjustStock, domain.ModuleStock,
		fmt.Sprintf("%s %+d -> %d", product.SKU, delta, next))
	if after := product.Health(); after != before {
		uc.logger.Info("stock health changed",
			zap.String("sku", product.SKU),
			zap.String("from", string(before)),
			zap.String("to", string(after)))
	}
	return product, nil
}

// StockHealth classifies the current product snapshot.
func (uc *UseCase) StockHealth(ctx context.Context) (domain.StockSummary, []domain.ProductHealth, error) {
	products, err := uc.products.ListProducts(ctx)
	if err != nil {
		return domain.StockSummary{}, nil, err
	}
	summary, rows := domain.SummarizeStock(products)
	return summary, rows, nil
}
