// Package stub is an in-process stand-in for the production backend: the
// configuration, chat, order, and training endpoints the engine consumes,
// backed by sqlite. It exists for local development and end-to-end tests; it
// scripts chat replies instead of generating them.
package stub

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tablepilot/tablepilot/internal/remote"
)

type Order struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	PublicID      string `gorm:"type:varchar(26);uniqueIndex;not null"`
	RestaurantID  string `gorm:"type:varchar(64);index"`
	CustomerName  string `gorm:"type:varchar(128)"`
	CustomerEmail string `gorm:"type:varchar(128)"`
	TableNumber   string `gorm:"type:varchar(32)"`
	ItemsJSON     string `gorm:"type:text"`
	TotalAmount   float64
	Status        string    `gorm:"type:varchar(16);index;not null"`
	CreatedAt     time.Time `gorm:"index"`
}

func (Order) TableName() string { return "orders" }

type BrandSettings struct {
	RestaurantID string `gorm:"primaryKey;type:varchar(64)"`
	ConfigJSON   string `gorm:"type:text"`
	UpdatedAt    time.Time
}

func (BrandSettings) TableName() string { return "brand_settings" }

var orderStatuses = map[string]bool{
	"pending":     true,
	"confirmed":   true,
	"in_progress": true,
	"completed":   true,
	"cancelled":   true,
}

type Store struct {
	db *gorm.DB
}

func OpenStore(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	if err := db.AutoMigrate(&Order{}, &BrandSettings{}); err != nil {
		return nil, errors.Wrap(err, "automigrate")
	}
	return &Store{db: db}, nil
}

func NewStoreWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Order{}, &BrandSettings{}); err != nil {
		return nil, errors.Wrap(err, "automigrate")
	}
	return &Store{db: db}, nil
}

func newOrderID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (s *Store) CreateOrder(ctx context.Context, restaurantID string, p remote.Placement) (*Order, error) {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return nil, err
	}
	o := &Order{
		PublicID:      newOrderID(),
		RestaurantID:  restaurantID,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		TableNumber:   p.TableNumber,
		ItemsJSON:     string(items),
		TotalAmount:   p.TotalAmount,
		Status:        "pending",
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// ListOrders returns recent orders, newest first.
func (s *Store) ListOrders(ctx context.Context, restaurantID string, limit int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}
	var out []Order
	if err := q.Find(&out).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, publicOrNumericID, status string) error {
	if !orderStatuses[status] {
		return errors.Errorf("invalid status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&Order{}).
		Where("public_id = ? OR id = ?", publicOrNumericID, publicOrNumericID).
		Update("status", status)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Store) SaveBrand(ctx context.Context, restaurantID string, cfg *remote.BrandConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	row := &BrandSettings{RestaurantID: restaurantID, ConfigJSON: string(raw), UpdatedAt: time.Now().UTC()}
	return errors.Wrap(s.db.WithContext(ctx).Save(row).Error, "save brand settings")
}

// LoadBrand returns the stored brand config, or an empty one when the
// restaurant has never saved settings.
func (s *Store) LoadBrand(ctx context.Context, restaurantID string) (*remote.BrandConfig, error) {
	var row BrandSettings
	err := s.db.WithContext(ctx).First(&row, "restaurant_id = ?", restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &remote.BrandConfig{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load brand settings")
	}
	var cfg remote.BrandConfig
	if err := json.Unmarshal([]byte(row.ConfigJSON), &cfg); err != nil {
		return nil, errors.Wrap(err, "decode brand settings")
	}
	return &cfg, nil
}
