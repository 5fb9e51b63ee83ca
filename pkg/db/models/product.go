package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product represents one sneaker model in the catalog. Per-colorway stock
// lives on its variants; Sold and Star are derived counters owned by the
// checkout/cancel and review workflows respectively.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	BrandID     uuid.UUID        `gorm:"column:brand_id;type:uuid;not null;index"`
	Brand       *Brand           `gorm:"foreignKey:BrandID"`
	Categories  []Category       `gorm:"many2many:product_categories"`
	Price       int              `gorm:"column:price;not null;check:price >= 0"`
	Discount    int              `gorm:"column:discount;not null;default:0;check:discount >= 0 AND discount <= 100"`
	Sold        int              `gorm:"column:sold;not null;default:0"`
	Star        float64          `gorm:"column:star;not null;default:0"`
	SizeMin     int              `gorm:"column:size_min;not null"`
	SizeMax     int              `gorm:"column:size_max;not null"`
	Gender      pq.StringArray   `gorm:"column:gender;type:text[]"`
	Description string           `gorm:"column:description"`
	Status      bool             `gorm:"column:status;not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID"`
	DeletedAt   *time.Time       `gorm:"column:deleted_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
