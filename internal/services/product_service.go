// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/blob-shop/internal/database"
	"github.com/javajoker/blob-shop/internal/i18n"
	"github.com/javajoker/blob-shop/internal/models"
	"github.com/javajoker/blob-shop/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=1024,image_ref"`
	Inventory   *int            `json:"inventory" validate:"omitempty,gte=0"`
	Active      *bool           `json:"active"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
// UnlimitedInventory clears the stock counter and wins over Inventory.
type UpdateProductRequest struct {
	Name               *string          `json:"name" validate:"omitnil,min=1,max=255"`
	Description        *string          `json:"description" validate:"omitempty,max=5000"`
	Price              *decimal.Decimal `json:"price" validate:"omitnil,gt=0"`
	ImageURL           *string          `json:"image_url" validate:"omitempty,max=1024,image_ref"`
	Inventory          *int             `json:"inventory" validate:"omitempty,gte=0"`
	UnlimitedInventory bool             `json:"unlimited_inventory"`
	Active             *bool            `json:"active"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// ListActive returns the storefront catalog, newest first.
func (s *ProductService) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, utils.NewInternal("failed to list products", err)
	}
	return products, nil
}

// ListAll is the admin view and includes deactivated products.
func (s *ProductService) ListAll(ctx context.Context, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternal("failed to count products", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, utils.NewInternal("failed to fetch products", err)
	}
	return products, total, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFound(i18n.KeyProductNotFound, "product not found")
		}
		return nil, utils.NewInternal("failed to load product", err)
	}
	return &product, nil
}

// GetMany loads every requested product in one query. Missing ids are
// simply absent from the result.
func (s *ProductService) GetMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return map[uint]models.Product{}, nil
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, utils.NewInternal("failed to load products", err)
	}

	return lo.KeyBy(products, func(p models.Product) uint { return p.ID }), nil
}

func (s *ProductService) Create(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		ImageURL:    req.ImageURL,
		Inventory:   req.Inventory,
		Active:      lo.FromPtrOr(req.Active, true),
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, utils.NewInternal("failed to create product", err)
	}
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = req.Price.Round(2)
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.UnlimitedInventory {
		updates["inventory"] = nil
	} else if req.Inventory != nil {
		updates["inventory"] = *req.Inventory
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	var product models.Product
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}
		return tx.First(&product, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFound(i18n.KeyProductNotFound, "product not found")
		}
		return nil, utils.NewInternal("failed to update product", err)
	}
	return &product, nil
}

// Deactivate hides a product from the storefront. Products are never
// deleted so historical orders keep resolving.
func (s *ProductService) Deactivate(ctx context.Context, id uint) (*models.Product, error) {
	return s.Update(ctx, id, &UpdateProductRequest{Active: lo.ToPtr(false)})
}

func validationFailed(err error) *utils.AppError {
	return utils.NewInvalidRequest(i18n.KeyValidationFailed, "validation failed").
		WithDetails(utils.GetValidationErrors(err))
}
