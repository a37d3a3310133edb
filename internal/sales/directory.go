package sales

import (
	"sort"
	"strings"

	"tinttrack/internal/cpf"
)

// Listing is one page of the customer directory.
type Listing struct {
	Customers []*Customer `json:"customers"`
	Shown     int         `json:"shown"`
	Total     int         `json:"total"`
}

// MatchesSearch reports whether c matches a directory search term: the name
// contains the term ignoring case, or the CPF contains the term's digits.
func MatchesSearch(c *Customer, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
		return true
	}
	digits := cpf.Digits(term)
	return digits != "" && strings.Contains(c.CPF, digits)
}

// FilterCustomers keeps the customers matching term, preserving order.
func FilterCustomers(customers []*Customer, term string) []*Customer {
	out := make([]*Customer, 0, len(customers))
	for _, c := range customers {
		if MatchesSearch(c, term) {
			out = append(out, c)
		}
	}
	return out
}

// SortCustomers orders customers by last purchase, most recent first.
func SortCustomers(customers []*Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].LastPurchase.After(customers[j].LastPurchase)
	})
}

// UpsertCustomer merges updated into a directory listing: it replaces the entry
// with the same ID or prepends it, then re-sorts.
func UpsertCustomer(customers []*Customer, updated *Customer) []*Customer {
	out := make([]*Customer, 0, len(customers)+1)
	replaced := false
	for _, c := range customers {
		if c.ID == updated.ID {
			out = append(out, updated)
			replaced = true
			continue
		}
		out = append(out, c)
	}
	if !replaced {
		out = append([]*Customer{updated}, out...)
	}
	SortCustomers(out)
	return out
}

// SortSaleRecords orders flattened sales most recent first.
func SortSaleRecords(records []SaleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
}
