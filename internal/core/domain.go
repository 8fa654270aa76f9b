package core

import (
	"errors"
	"strings"
	"time"
)

// CategoryType classifies a category as money coming in or going out.
// There are exactly two values; anything else is a data-integrity problem.
type CategoryType string

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

var (
	ErrInvalidCategoryType = errors.New("category type must be income or expense")
	ErrEmptyName           = errors.New("name is required")
	ErrEmptyIcon           = errors.New("icon is required")
	ErrEmptyColor          = errors.New("color is required")
	ErrMissingCategory     = errors.New("category is required")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
	ErrInvalidYear         = errors.New("year must be between 2000 and 2100")
)

// ParseCategoryType validates a raw type string.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case Income, Expense:
		return CategoryType(s), nil
	}
	return "", ErrInvalidCategoryType
}

// Valid reports whether t is one of the two known types.
func (t CategoryType) Valid() bool {
	return t == Income || t == Expense
}

// Category is a bucket transactions are recorded against. A nil OwnerID
// means the category is global/shared; IsDefault marks seed categories.
type Category struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	Icon      string       `json:"icon"`
	Color     string       `json:"color"`
	IsDefault bool         `json:"isDefault"`
	OwnerID   *int64       `json:"userId"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	if strings.TrimSpace(c.Icon) == "" {
		return ErrEmptyIcon
	}
	if strings.TrimSpace(c.Color) == "" {
		return ErrEmptyColor
	}
	return nil
}

// Transaction is a single income or expense entry. Amount is always a
// positive magnitude; the direction comes from the joined category's type.
type Transaction struct {
	ID          int64     `json:"id"`
	Amount      Money     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CategoryID  int64     `json:"categoryId"`
	OwnerID     *int64    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`

	// Category is the joined category row, populated on reads.
	Category *Category `json:"category,omitempty"`
}

func (t Transaction) Validate() error {
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if t.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Budget caps spending for one category in one calendar month. At most one
// row exists per (category, month, year, owner) tuple; re-submitting the
// tuple overwrites the amount.
type Budget struct {
	ID         int64     `json:"id"`
	Amount     Money     `json:"amount"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	CategoryID int64     `json:"categoryId"`
	OwnerID    *int64    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`

	Category *Category `json:"category,omitempty"`
}

// User identifies an account owner. The password is never serialized.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

func (b Budget) Validate() error {
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidMonth
	}
	if b.Year < 2000 || b.Year > 2100 {
		return ErrInvalidYear
	}
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}
