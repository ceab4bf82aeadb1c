package service

import (
	"context"

	"agent-sim-be/internal/dto"
	"agent-sim-be/pkg/catalog"
)

type ICatalogService interface {
	Options(ctx context.Context, locale string) *dto.CatalogOptionsResponse
}

type catalogService struct{}

func NewCatalogService() ICatalogService {
	return &catalogService{}
}

func (c *catalogService) Options(ctx context.Context, locale string) *dto.CatalogOptionsResponse {
	return &dto.CatalogOptionsResponse{
		Categories: toItems(catalog.Categories(), locale),
		Audiences:  toItems(catalog.Audiences(), locale),
		Goals:      toItems(catalog.Goals(), locale),
		Maturities: toItems(catalog.Maturities(), locale),
	}
}

func toItems(entries []catalog.Entry, locale string) []dto.OptionItemDTO {
	items := make([]dto.OptionItemDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.OptionItemDTO{
			Value:       e.Key,
			Label:       e.LabelFor(locale),
			Description: e.DescriptionFor(locale),
		})
	}
	return items
}
