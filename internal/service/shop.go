package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/pantry/backend/internal/apperr"
	"github.com/pageza/pantry/backend/internal/models"
	"github.com/pageza/pantry/backend/internal/types"
)

const (
	DefaultNearbyRadiusKm = 10.0
	MaxNearbyRadiusKm     = 500.0
)

type ShopService struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

func NewShopService(db *gorm.DB, recorder ActivityRecorder) *ShopService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &ShopService{db: db, recorder: recorder}
}

func (s *ShopService) CreateShop(ctx context.Context, actor *models.User, req *types.CreateShopRequest) (*models.Shop, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.E(apperr.ErrValidation, "Name is required")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	shop := &models.Shop{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		OwnerID:     actor.ID,
		Status:      models.ModerationPending,
	}
	if err := s.db.WithContext(ctx).Create(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionCreate, models.EntityShop, shop.ID.String(), shop.Name, ""))
	return shop, nil
}

func (s *ShopService) GetShop(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Shop not found")
	}
	return &shop, nil
}

// ListShops lists shops newest first, optionally filtered by owner and status
func (s *ShopService) ListShops(ctx context.Context, owner *uuid.UUID, status string) ([]models.Shop, error) {
	query := s.db.WithContext(ctx).Model(&models.Shop{})
	if owner != nil {
		query = query.Where("owner_id = ?", *owner)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var shops []models.Shop
	if err := query.Order("created_at DESC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

// NearbyShops returns approved shops within radiusKm of the point, closest first
func (s *ShopService) NearbyShops(ctx context.Context, lat, lng, radiusKm float64) ([]types.NearbyShop, error) {
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm > MaxNearbyRadiusKm {
		return nil, apperr.E(apperr.ErrValidation, "Radius must be at most %.0f km", MaxNearbyRadiusKm)
	}

	// bounding box prefilter; one degree of latitude is roughly 111 km
	latDelta := radiusKm / 111.0
	query := s.db.WithContext(ctx).
		Where("status = ?", models.ModerationApproved).
		Where("latitude BETWEEN ? AND ?", lat-latDelta, lat+latDelta)

	var shops []models.Shop
	if err := query.Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}

	out := make([]types.NearbyShop, 0, len(shops))
	for _, shop := range shops {
		d := HaversineKm(lat, lng, shop.Latitude, shop.Longitude)
		if d <= radiusKm {
			out = append(out, types.NearbyShop{Shop: shop, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

func (s *ShopService) UpdateShop(ctx context.Context, actor *models.User, id uuid.UUID, req *types.UpdateShopRequest) (*models.Shop, error) {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, shop.OwnerID) {
		return nil, apperr.E(apperr.ErrForbidden, "Not allowed to modify this shop")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.E(apperr.ErrValidation, "Name is required")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	lat, lng := shop.Latitude, shop.Longitude
	if req.Latitude != nil {
		lat = *req.Latitude
		updates["latitude"] = lat
	}
	if req.Longitude != nil {
		lng = *req.Longitude
		updates["longitude"] = lng
	}
	if err := validateCoordinates(lat, lng); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return shop, nil
	}

	if err := s.db.WithContext(ctx).Model(shop).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionUpdate, models.EntityShop, shop.ID.String(), shop.Name, ""))
	return s.GetShop(ctx, id)
}

// DeleteShop removes the shop and detaches its recipes
func (s *ShopService) DeleteShop(ctx context.Context, actor *models.User, id uuid.UUID) error {
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, shop.OwnerID) {
		return apperr.E(apperr.ErrForbidden, "Not allowed to delete this shop")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Recipe{}).Where("shop_id = ?", id).Update("shop_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Shop{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	s.recorder.Enqueue(newActivity(actor, models.ActionDelete, models.EntityShop, shop.ID.String(), shop.Name, ""))
	return nil
}

func (s *ShopService) SetShopStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Shop, error) {
	action, err := moderationAction(status)
	if err != nil {
		return nil, err
	}
	shop, err := s.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(shop).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update shop status: %w", err)
	}
	shop.Status = status

	s.recorder.Enqueue(newActivity(actor, action, models.EntityShop, shop.ID.String(), shop.Name, "status set to "+status))
	return shop, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return apperr.E(apperr.ErrValidation, "Coordinates out of range")
	}
	return nil
}
