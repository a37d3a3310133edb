package sales

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// customerRecord is the row layout of the customers table. Sales are embedded
// as a JSON array so the customer stays a single document.
type customerRecord struct {
	ID           string                    `gorm:"primaryKey;size:36"`
	CPF          string                    `gorm:"size:11;uniqueIndex;not null"`
	Name         string                    `gorm:"size:200;not null"`
	Phone        string                    `gorm:"size:40"`
	Sales        datatypes.JSONSlice[Sale] `gorm:"not null"`
	LastPurchase time.Time                 `gorm:"index"`
	CreatedBy    string                    `gorm:"size:36;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (customerRecord) TableName() string { return "customers" }

func (r *customerRecord) toDomain() *Customer {
	sales := make([]Sale, len(r.Sales))
	copy(sales, r.Sales)
	return &Customer{
		ID:           r.ID,
		CPF:          r.CPF,
		Name:         r.Name,
		Phone:        r.Phone,
		Sales:        sales,
		LastPurchase: r.LastPurchase,
		CreatedBy:    r.CreatedBy,
	}
}

func recordFromDomain(c *Customer) *customerRecord {
	sales := make([]Sale, len(c.Sales))
	copy(sales, c.Sales)
	return &customerRecord{
		ID:           c.ID,
		CPF:          c.CPF,
		Name:         c.Name,
		Phone:        c.Phone,
		Sales:        datatypes.JSONSlice[Sale](sales),
		LastPurchase: c.LastPurchase,
		CreatedBy:    c.CreatedBy,
	}
}

// GormStorage implements Storage on a SQL database through GORM.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new GormStorage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// Migrate creates or updates the customers table.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&customerRecord{})
}

// Create inserts c.
func (s *GormStorage) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if err := s.db.WithContext(ctx).Create(recordFromDomain(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCPF
		}
		return err
	}
	return nil
}

// FindByCPF finds a customer by CPF.
func (s *GormStorage) FindByCPF(ctx context.Context, cpf string) (*Customer, error) {
	var rec customerRecord
	if err := s.db.WithContext(ctx).Where("cpf = ?", cpf).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return rec.toDomain(), nil
}

// List returns every customer, most recent purchase first.
func (s *GormStorage) List(ctx context.Context) ([]*Customer, error) {
	var recs []customerRecord
	if err := s.db.WithContext(ctx).Order("last_purchase DESC").Order("id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Customer, len(recs))
	for i := range recs {
		out[i] = recs[i].toDomain()
	}
	return out, nil
}

// Update writes only the fields set in p.
func (s *GormStorage) Update(ctx context.Context, id string, p Patch) error {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.Sales != nil {
		fields["sales"] = datatypes.JSONSlice[Sale](p.Sales)
	}
	if p.LastPurchase != nil {
		fields["last_purchase"] = *p.LastPurchase
	}
	if len(fields) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&customerRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
