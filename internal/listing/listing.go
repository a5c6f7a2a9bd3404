// Package listing computes the admin booking list: status filter, free-text
// search, sort order and cumulative "load more" paging.
package listing

import (
	"sort"
	"strings"

	"washify/internal/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	FilterAll       = "all"
	FilterUpcoming  = "upcoming"
	FilterCompleted = "completed"
)

const (
	SortDateNewest = "date-newest"
	SortDateOldest = "date-oldest"
	SortName       = "name"
	SortPriceHigh  = "price-high"
	SortPriceLow   = "price-low"
)

type Params struct {
	Filter   string `json:"filter"`
	Search   string `json:"search"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// Window is the visible slice of the filtered, sorted collection.
type Window struct {
	Items   []models.Booking `json:"items"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
	Page    int              `json:"page"`
}

// DefaultParams returns upcoming bookings, newest date first, first page.
func DefaultParams() Params {
	return Params{
		Filter:   FilterUpcoming,
		Sort:     SortDateNewest,
		Page:     1,
		PageSize: models.DefaultPageSize,
	}
}

// Normalize replaces unknown or empty values with defaults.
func (p Params) Normalize() Params {
	switch p.Filter {
	case FilterAll, FilterUpcoming, FilterCompleted:
	default:
		p.Filter = FilterUpcoming
	}
	switch p.Sort {
	case SortDateNewest, SortDateOldest, SortName, SortPriceHigh, SortPriceLow:
	default:
		p.Sort = SortDateNewest
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = models.DefaultPageSize
	}
	return p
}

// Apply is a pure function of its inputs; bookings is never modified.
func Apply(bookings []models.Booking, params Params) Window {
	p := params.Normalize()
	search := strings.ToLower(p.Search)

	filtered := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !matchesFilter(b, p.Filter) || !matchesSearch(b, search) {
			continue
		}
		filtered = append(filtered, b)
	}

	sortBookings(filtered, p.Sort)

	end := p.Page * p.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return Window{
		Items:   filtered[:end],
		Total:   len(filtered),
		HasMore: end < len(filtered),
		Page:    p.Page,
	}
}

func matchesFilter(b models.Booking, filter string) bool {
	if filter == FilterAll {
		return true
	}
	return b.Status == filter
}

func matchesSearch(b models.Booking, search string) bool {
	if search == "" {
		return true
	}
	for _, field := range []string{b.Name, b.Phone, b.City, b.Address} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func sortBookings(items []models.Booking, order string) {
	switch order {
	case SortDateOldest:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date < items[j].Date })
	case SortName:
		// Collator is not safe for concurrent use.
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(items, func(i, j int) bool {
			return col.CompareString(items[i].Name, items[j].Name) < 0
		})
	case SortPriceHigh:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price > items[j].Price })
	case SortPriceLow:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Price < items[j].Price })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date > items[j].Date })
	}
}
