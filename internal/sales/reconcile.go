package sales

import "sort"

// SortSales orders sales most-recent-first. Sales sharing a date keep their
// relative order.
func SortSales(sales []Sale) {
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.After(sales[j].Date)
	})
}

// NewCustomer starts a customer aggregate from its first sale.
func NewCustomer(id, cpf, name, phone, createdBy string, first Sale) *Customer {
	return &Customer{
		ID:           id,
		CPF:          cpf,
		Name:         name,
		Phone:        phone,
		Sales:        []Sale{first},
		LastPurchase: first.Date,
		CreatedBy:    createdBy,
	}
}

// WithSale returns a copy of c with sale appended, the list re-sorted and
// LastPurchase pointing at the newest sale. c is not modified.
func WithSale(c *Customer, sale Sale) *Customer {
	out := c.Clone()
	out.Sales = append(out.Sales, sale)
	SortSales(out.Sales)
	out.LastPurchase = out.Sales[0].Date
	return out
}

// WithEditedSale returns a copy of c where the sale sharing edited.ID is
// replaced. The second result is false, and the copy equals c, when no sale
// has that ID.
func WithEditedSale(c *Customer, edited Sale) (*Customer, bool) {
	out := c.Clone()
	found := false
	for i := range out.Sales {
		if out.Sales[i].ID == edited.ID {
			out.Sales[i] = edited
			found = true
			break
		}
	}
	if !found {
		return out, false
	}
	SortSales(out.Sales)
	out.LastPurchase = out.Sales[0].Date
	return out, true
}

// WithoutSale returns a copy of c without the sale identified by saleID.
// When the last sale is removed LastPurchase keeps its previous value.
func WithoutSale(c *Customer, saleID string) (*Customer, bool) {
	out := c.Clone()
	kept := out.Sales[:0]
	found := false
	for _, s := range out.Sales {
		if s.ID == saleID {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	out.Sales = kept
	if len(out.Sales) > 0 {
		SortSales(out.Sales)
		out.LastPurchase = out.Sales[0].Date
	}
	return out, found
}
