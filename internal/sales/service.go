package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tinttrack/internal/cpf"
	"tinttrack/internal/identity"
	"tinttrack/internal/logger"
)

// ErrSaleNotFound is returned when a customer has no sale with the given ID.
var ErrSaleNotFound = errors.New("sale not found")

// Service provides the customer and sale operations on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RegisterSale records a sale for the customer identified by the form's CPF,
// creating the customer when the CPF is new. The stored customer is returned.
func (s *Service) RegisterSale(ctx context.Context, form SaleForm) (*Customer, error) {
	p, err := identity.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	sale := Sale{
		ID:            s.newID(),
		UserID:        p.UserID,
		Product:       form.Product,
		ContainerSize: form.ContainerSize,
		Observations:  form.Observations,
		Date:          s.timestamp(),
	}

	existing, err := s.storage.FindByCPF(ctx, form.CustomerCPF)
	if errors.Is(err, ErrCustomerNotFound) {
		customer := NewCustomer(s.newID(), form.CustomerCPF, form.CustomerName, form.CustomerPhone, p.UserID, sale)
		err = s.storage.Create(ctx, customer)
		if err == nil {
			s.log(ctx).Info("customer created",
				zap.String("customer_id", customer.ID),
				zap.String("sale_id", sale.ID),
				zap.String("user_id", p.UserID),
			)
			return customer, nil
		}
		if !errors.Is(err, ErrDuplicateCPF) {
			s.log(ctx).Error("failed to create customer", zap.String("cpf", cpf.Mask(form.CustomerCPF)), zap.Error(err))
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		// Another request created the customer first; append to it instead.
		existing, err = s.storage.FindByCPF(ctx, form.CustomerCPF)
	}
	if err != nil {
		s.log(ctx).Error("failed to look up customer", zap.String("cpf", cpf.Mask(form.CustomerCPF)), zap.Error(err))
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	return s.appendSale(ctx, existing, form, sale)
}

func (s *Service) appendSale(ctx context.Context, existing *Customer, form SaleForm, sale Sale) (*Customer, error) {
	updated := WithSale(existing, sale)
	updated.Name = form.CustomerName
	patch := Patch{
		Name:         &updated.Name,
		Sales:        updated.Sales,
		LastPurchase: &updated.LastPurchase,
	}
	// The stored phone is only replaced when a new one is given.
	if form.CustomerPhone != "" {
		updated.Phone = form.CustomerPhone
		patch.Phone = &updated.Phone
	}

	if err := s.storage.Update(ctx, existing.ID, patch); err != nil {
		s.log(ctx).Error("failed to append sale", zap.String("customer_id", existing.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.log(ctx).Info("sale registered",
		zap.String("customer_id", existing.ID),
		zap.String("sale_id", sale.ID),
		zap.Int("sales_count", len(updated.Sales)),
	)
	return updated, nil
}

// UpdateSale changes product, container size and observations of a sale. The
// sale keeps its ID, owner and date.
func (s *Service) UpdateSale(ctx context.Context, customerCPF, saleID string, form SaleEditForm) (*Customer, error) {
	if _, err := identity.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, customerCPF)
	if err != nil {
		return nil, err
	}

	edited := Sale{ID: saleID}
	for _, sale := range customer.Sales {
		if sale.ID == saleID {
			edited = sale
			break
		}
	}
	edited.Product = form.Product
	edited.ContainerSize = form.ContainerSize
	edited.Observations = form.Observations

	updated, ok := WithEditedSale(customer, edited)
	if !ok {
		return nil, ErrSaleNotFound
	}

	if err := s.writeSales(ctx, updated); err != nil {
		s.log(ctx).Error("failed to update sale",
			zap.String("customer_id", customer.ID),
			zap.String("sale_id", saleID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}

	s.log(ctx).Info("sale updated", zap.String("customer_id", customer.ID), zap.String("sale_id", saleID))
	return updated, nil
}

// DeleteSale removes a sale from the customer's history.
func (s *Service) DeleteSale(ctx context.Context, customerCPF, saleID string) (*Customer, error) {
	if _, err := identity.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, customerCPF)
	if err != nil {
		return nil, err
	}

	updated, ok := WithoutSale(customer, saleID)
	if !ok {
		return nil, ErrSaleNotFound
	}

	if err := s.writeSales(ctx, updated); err != nil {
		s.log(ctx).Error("failed to delete sale",
			zap.String("customer_id", customer.ID),
			zap.String("sale_id", saleID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to delete sale: %w", err)
	}

	s.log(ctx).Info("sale deleted",
		zap.String("customer_id", customer.ID),
		zap.String("sale_id", saleID),
		zap.Int("sales_count", len(updated.Sales)),
	)
	return updated, nil
}

// UpdateCustomer changes the customer's name and phone.
func (s *Service) UpdateCustomer(ctx context.Context, customerCPF string, form CustomerForm) (*Customer, error) {
	if _, err := identity.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, customerCPF)
	if err != nil {
		return nil, err
	}

	updated := customer.Clone()
	updated.Name = form.Name
	updated.Phone = form.Phone
	if err := s.storage.Update(ctx, customer.ID, Patch{Name: &updated.Name, Phone: &updated.Phone}); err != nil {
		s.log(ctx).Error("failed to update customer", zap.String("customer_id", customer.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.log(ctx).Info("customer updated", zap.String("customer_id", customer.ID))
	return updated, nil
}

// GetCustomer looks a customer up by CPF; punctuation in cpf is ignored.
func (s *Service) GetCustomer(ctx context.Context, customerCPF string) (*Customer, error) {
	digits := cpf.Digits(customerCPF)
	if digits == "" {
		return nil, ErrCustomerNotFound
	}
	customer, err := s.storage.FindByCPF(ctx, digits)
	if err != nil {
		if !errors.Is(err, ErrCustomerNotFound) {
			s.log(ctx).Error("failed to fetch customer", zap.String("cpf", cpf.Mask(digits)), zap.Error(err))
			return nil, fmt.Errorf("failed to fetch customer: %w", err)
		}
		return nil, err
	}
	return customer, nil
}

// ListCustomers returns the directory filtered by term.
func (s *Service) ListCustomers(ctx context.Context, term string) (*Listing, error) {
	all, err := s.storage.List(ctx)
	if err != nil {
		s.log(ctx).Error("failed to list customers", zap.Error(err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	filtered := FilterCustomers(all, term)
	s.log(ctx).Debug("customer search completed",
		zap.String("term", term),
		zap.Int("results_count", len(filtered)),
		zap.Int("total", len(all)),
	)
	return &Listing{Customers: filtered, Shown: len(filtered), Total: len(all)}, nil
}

// SalesQuery filters the flat sales listing. Empty fields do not filter.
type SalesQuery struct {
	OwnerID     string
	CustomerCPF string
}

// ListSales flattens customer sales into a single list, most recent first.
func (s *Service) ListSales(ctx context.Context, q SalesQuery) ([]SaleRecord, error) {
	var customers []*Customer
	if q.CustomerCPF != "" {
		c, err := s.GetCustomer(ctx, q.CustomerCPF)
		if errors.Is(err, ErrCustomerNotFound) {
			return []SaleRecord{}, nil
		}
		if err != nil {
			return nil, err
		}
		customers = []*Customer{c}
	} else {
		all, err := s.storage.List(ctx)
		if err != nil {
			s.log(ctx).Error("failed to list customers", zap.Error(err))
			return nil, fmt.Errorf("failed to list sales: %w", err)
		}
		customers = all
	}

	out := make([]SaleRecord, 0)
	for _, c := range customers {
		for _, sale := range c.Sales {
			if q.OwnerID != "" && sale.UserID != q.OwnerID {
				continue
			}
			out = append(out, SaleRecord{
				Sale:          sale,
				CustomerName:  c.Name,
				CustomerCPF:   c.CPF,
				CustomerPhone: c.Phone,
			})
		}
	}
	SortSaleRecords(out)
	return out, nil
}

// log returns the request-scoped logger when one is on ctx.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

func (s *Service) writeSales(ctx context.Context, c *Customer) error {
	if c.Sales == nil {
		c.Sales = []Sale{}
	}
	return s.storage.Update(ctx, c.ID, Patch{Sales: c.Sales, LastPurchase: &c.LastPurchase})
}

// timestamp is the current time at millisecond precision, matching the ISO
// timestamps stored on sales.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
