package usecase

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"storefront/internal/domain/repository"
	"storefront/pkg/errors"
	"storefront/pkg/logger"
)

type seedCatalog struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Products []struct {
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		Category    string  `yaml:"category"`
		Price       float64 `yaml:"price"`
		Stock       int     `yaml:"stock"`
		Image       string  `yaml:"image"`
		Rating      float64 `yaml:"rating"`
		Reviews     int     `yaml:"reviews"`
	} `yaml:"products"`
}

type CatalogSeeder struct {
	productRepo repository.ProductRepository
	products    *ProductUseCase
	categories  *CategoryUseCase
}

func NewCatalogSeeder(
	productRepo repository.ProductRepository,
	products *ProductUseCase,
	categories *CategoryUseCase,
) *CatalogSeeder {
	return &CatalogSeeder{
		productRepo: productRepo,
		products:    products,
		categories:  categories,
	}
}

// Seed loads categories and products from a YAML document. It does nothing
// when the catalog already holds products, and returns how many products it
// created.
func (s *CatalogSeeder) Seed(ctx context.Context, r io.Reader) (int, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Debug("Catalog already has %d products, skipping seed", count)
		return 0, nil
	}

	var catalog seedCatalog
	if err := yaml.NewDecoder(r).Decode(&catalog); err != nil {
		return 0, errors.BadRequest("Invalid catalog seed file", err)
	}

	for _, c := range catalog.Categories {
		_, err := s.categories.CreateCategory(ctx, CreateCategoryInput{Name: c.Name, Description: c.Description})
		if err != nil && !errors.Is(err, errors.CodeConflict) {
			return 0, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}

	created := 0
	for _, p := range catalog.Products {
		_, err := s.products.CreateProduct(ctx, CreateProductInput{
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
			Stock:       p.Stock,
			Image:       p.Image,
			Rating:      p.Rating,
			Reviews:     p.Reviews,
		})
		if err != nil {
			return created, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		created++
	}

	logger.Info("Catalog seeded: %d categories, %d products", len(catalog.Categories), created)
	return created, nil
}
