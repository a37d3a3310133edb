package sales

import "time"

// ContainerSize is the package a paint product is sold in.
type ContainerSize string

const (
	ContainerCan    ContainerSize = "lata"
	ContainerGallon ContainerSize = "galao"
	ContainerBucket ContainerSize = "balde"
)

// Valid reports whether c is one of the known container sizes.
func (c ContainerSize) Valid() bool {
	switch c {
	case ContainerCan, ContainerGallon, ContainerBucket:
		return true
	}
	return false
}

// Sale represents a single paint purchase embedded in a customer.
type Sale struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Product       string        `json:"product"`
	ContainerSize ContainerSize `json:"containerSize"`
	Observations  string        `json:"observations"`
	Date          time.Time     `json:"date"`
}

// Customer is the aggregate keyed by CPF. Sales are kept most-recent-first and
// LastPurchase mirrors the date of Sales[0].
type Customer struct {
	ID           string    `json:"id"`
	CPF          string    `json:"cpf"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Sales        []Sale    `json:"sales"`
	LastPurchase time.Time `json:"lastPurchase"`
	CreatedBy    string    `json:"createdBy"`
}

// Clone returns a deep copy of the customer.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	out := *c
	out.Sales = make([]Sale, len(c.Sales))
	copy(out.Sales, c.Sales)
	return &out
}

// SaleRecord is a sale flattened together with its customer's identifying
// fields, the shape older clients read from the flat sales listing.
type SaleRecord struct {
	Sale
	CustomerName  string `json:"customerName"`
	CustomerCPF   string `json:"customerCpf"`
	CustomerPhone string `json:"customerPhone"`
}
