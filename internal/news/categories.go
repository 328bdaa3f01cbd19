package news

import (
	"errors"
	"fmt"
)

// Category is the internal category identifier exposed to clients.
type Category int

// Configured categories, in crawl order.
const (
	CategoryPolitics Category = iota + 1
	CategoryEconomy
	CategorySociety
	CategoryCulture
	CategoryWorld
	CategoryScience
)

// ErrInvalidCategory is returned when a category has no site code mapping.
var ErrInvalidCategory = errors.New("invalid category")

// categoryCodes maps internal ids to the site's section codes.
var categoryCodes = map[Category]string{
	CategoryPolitics: "100", // 정치
	CategoryEconomy:  "101", // 경제
	CategorySociety:  "102", // 사회
	CategoryCulture:  "103", // 생활/문화
	CategoryWorld:    "104", // 세계
	CategoryScience:  "105", // IT/과학
}

// AllCategories returns every configured category in fixed crawl order.
func AllCategories() []Category {
	return []Category{
		CategoryPolitics,
		CategoryEconomy,
		CategorySociety,
		CategoryCulture,
		CategoryWorld,
		CategoryScience,
	}
}

// Code resolves the external site section code for the category.
func (c Category) Code() (string, error) {
	code, ok := categoryCodes[c]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrInvalidCategory, int(c))
	}
	return code, nil
}

// Valid reports whether the category has a site code mapping.
func (c Category) Valid() bool {
	_, ok := categoryCodes[c]
	return ok
}
