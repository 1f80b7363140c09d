package core

import (
	"errors"
	"slices"
	"strings"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBill    CategoryType = "bill"
	CategoryGeneral CategoryType = "general"
)

// DefaultCategoryColor is applied when a category is saved without a color.
const DefaultCategoryColor = "gray-500"

// Category is a user-defined label with a display color. Bills, paychecks and
// expenses refer to categories by name.
type Category struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Type  CategoryType `json:"type"`
	Color string       `json:"color"`
}

// Choice is one selectable value and its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var CategoryTypes = []Choice{
	{"income", "Income"},
	{"expense", "Expense"},
	{"bill", "Bill"},
	{"general", "General"},
}

// CategoryColors are Tailwind background shades.
var CategoryColors = []Choice{
	{"red-500", "Red"},
	{"rose-500", "Rose"},
	{"orange-500", "Orange"},
	{"amber-500", "Amber"},
	{"yellow-500", "Yellow"},
	{"lime-500", "Lime"},
	{"green-500", "Green"},
	{"emerald-500", "Emerald"},
	{"teal-500", "Teal"},
	{"cyan-500", "Cyan"},
	{"sky-500", "Sky"},
	{"blue-500", "Blue"},
	{"indigo-500", "Indigo"},
	{"violet-500", "Violet"},
	{"purple-500", "Purple"},
	{"fuchsia-500", "Fuchsia"},
	{"pink-500", "Pink"},
	{"gray-500", "Gray"},
}

var (
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidColor        = errors.New("invalid category color")
	ErrCategoryNameTooLong = errors.New("category name too long (max 100 characters)")
	// ErrDuplicateCategory means the user already has a live category with
	// that name.
	ErrDuplicateCategory = errors.New("category name already in use")
)

// WithDefaults trims the name and fills in an empty type or color.
func (c Category) WithDefaults() Category {
	c.Name = strings.TrimSpace(c.Name)
	if c.Type == "" {
		c.Type = CategoryGeneral
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	return c
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrCategoryNameTooLong
	}
	if !hasChoice(CategoryTypes, string(c.Type)) {
		return ErrInvalidCategoryType
	}
	if !hasChoice(CategoryColors, c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func hasChoice(choices []Choice, v string) bool {
	return slices.ContainsFunc(choices, func(c Choice) bool { return c.Value == v })
}
