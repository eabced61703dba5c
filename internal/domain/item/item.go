package item

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("item: not found or not available")
	ErrNameTaken         = errors.New("item: name already attributed")
	ErrInvalidCategory   = errors.New("item: unknown category")
	ErrNegativePrice     = errors.New("item: price must be zero or greater")
	ErrNegativeStock     = errors.New("item: stock must be zero or greater")
	ErrInvalidQuantity   = errors.New("item: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("item: quantity exceeds available stock")
)

// Category is the closed set of menu sections an item can belong to.
type Category string

const (
	CategoryStarter    Category = "starter"
	CategoryMainCourse Category = "main_course"
	CategoryDessert    Category = "dessert"
	CategoryDrink      Category = "drink"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryStarter:
		return CategoryStarter, nil
	case CategoryMainCourse:
		return CategoryMainCourse, nil
	case CategoryDessert:
		return CategoryDessert, nil
	case CategoryDrink:
		return CategoryDrink, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// Price is an amount in minor currency units (cents).
type Price int64

// Major renders the price in major units with two decimals, e.g. 1960 -> "19.60".
func (p Price) Major() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Item is a menu entry. Name is unique case-insensitively; Exposed controls
// customer visibility. Stock is mutated only by admin updates and checkout
// decrements.
type Item struct {
	ID        string
	Name      string
	Price     Price
	Category  Category
	Stock     int
	Exposed   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, name string, price Price, category Category, stock int, exposed bool) (*Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("item: name is required")
	}
	if price < 0 {
		return nil, ErrNegativePrice
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Item{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Price:     price,
		Category:  category,
		Stock:     stock,
		Exposed:   exposed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NormalizeName is the canonical key for case-insensitive name lookups.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (i *Item) Touch() {
	i.UpdatedAt = time.Now().UTC()
}
