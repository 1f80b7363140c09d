package core

import (
	"errors"
	"strings"
	"testing"
)

func TestCategoryValidate(t *testing.T) {
	tests := []struct {
		name string
		cat  Category
		want error
	}{
		{"defaults", Category{Name: "  Groceries "}.WithDefaults(), nil},
		{"explicit", Category{Name: "Salary", Type: CategoryIncome, Color: "green-500"}, nil},
		{"empty name", Category{Name: "  "}.WithDefaults(), ErrEmptyName},
		{"long name", Category{Name: strings.Repeat("x", 101)}.WithDefaults(), ErrCategoryNameTooLong},
		{"bad type", Category{Name: "a", Type: "savings", Color: "red-500"}, ErrInvalidCategoryType},
		{"bad color", Category{Name: "a", Type: CategoryBill, Color: "bg-red-500"}, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cat.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
			if tt.want != nil && !IsValidation(err) {
				t.Errorf("%v not reported as validation error", err)
			}
		})
	}
}

func TestCategoryWithDefaults(t *testing.T) {
	c := Category{Name: " Rent "}.WithDefaults()
	if c.Name != "Rent" || c.Type != CategoryGeneral || c.Color != DefaultCategoryColor {
		t.Fatalf("WithDefaults() = %+v", c)
	}
	kept := Category{Name: "Pay", Type: CategoryIncome, Color: "sky-500"}.WithDefaults()
	if kept.Type != CategoryIncome || kept.Color != "sky-500" {
		t.Fatalf("WithDefaults() overrode set fields: %+v", kept)
	}
}
