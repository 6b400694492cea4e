package service

import (
	"strings"

	"github.com/XTeam-Pro/AIMLM/internal/models"
	"github.com/XTeam-Pro/AIMLM/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	Slug        string
	Name        string
	Description string
	PriceAmount decimal.Decimal
	PVValue     decimal.Decimal
	Images      []string
	Tags        []string
	IsActive    *bool
	SortOrder   int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     search,
		OnlyActive: false,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	priceAmount := input.PriceAmount.RoundBank(2)
	pvValue := input.PVValue.RoundBank(2)
	if slug == "" || name == "" {
		return nil, ErrProductNotFound
	}
	if priceAmount.LessThanOrEqual(decimal.Zero) || pvValue.IsNegative() {
		return nil, ErrProductPriceInvalid
	}
	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugUsed
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := models.Product{
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		PriceAmount: models.NewMoneyFromDecimal(priceAmount),
		PVValue:     models.NewMoneyFromDecimal(pvValue),
		Images:      models.StringArray(input.Images),
		Tags:        models.StringArray(input.Tags),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	name := strings.TrimSpace(input.Name)
	priceAmount := input.PriceAmount.RoundBank(2)
	pvValue := input.PVValue.RoundBank(2)
	if slug == "" || name == "" {
		return nil, ErrProductNotFound
	}
	if priceAmount.LessThanOrEqual(decimal.Zero) || pvValue.IsNegative() {
		return nil, ErrProductPriceInvalid
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	count, err := s.repo.CountBySlug(slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugUsed
	}

	product.Slug = slug
	product.Name = name
	product.Description = strings.TrimSpace(input.Description)
	product.PriceAmount = models.NewMoneyFromDecimal(priceAmount)
	product.PVValue = models.NewMoneyFromDecimal(pvValue)
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}
