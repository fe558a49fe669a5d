/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package entity

import (
	"olap-graph-datagen-go/internal/models"
)

type priceRange struct {
	Min, Max float64
}

// categorySpec describes how products of one category are drawn.
type categorySpec struct {
	Price  priceRange
	Brands []string
	// Weight biases purchase draws toward the category.
	Weight float64
}

var categories = map[models.Category]categorySpec{
	models.CategoryElectronics: {Price: priceRange{50, 2000}, Brands: []string{"Apple", "Samsung", "Sony", "Dell", "HP"}, Weight: 0.25},
	models.CategoryClothing:    {Price: priceRange{20, 500}, Brands: []string{"Nike", "Adidas", "Zara", "Gap", "Levi"}, Weight: 0.20},
	models.CategoryHome:        {Price: priceRange{25, 800}, Brands: []string{"IKEA", "Wayfair", "Target", "HomeDepot"}, Weight: 0.18},
	models.CategoryBooks:       {Price: priceRange{10, 100}, Brands: []string{"Penguin", "Harper", "Simon", "Random"}, Weight: 0.12},
	models.CategorySports:      {Price: priceRange{30, 600}, Brands: []string{"Nike", "Adidas", "Wilson", "Spalding"}, Weight: 0.13},
	models.CategoryBeauty:      {Price: priceRange{15, 200}, Brands: []string{"Loreal", "Maybelline", "MAC", "Sephora"}, Weight: 0.12},
}

var (
	premiumBrands  = []string{"Apple", "Sony", "Nike", "Samsung"}
	standardBrands = []string{"HP", "Dell", "Gap", "Adidas"}
)

// crossCategory lists where a follow-up purchase tends to land.
var crossCategory = map[models.Category][]models.Category{
	models.CategoryElectronics: {models.CategoryHome, models.CategoryClothing},
	models.CategoryClothing:    {models.CategoryBeauty},
	models.CategoryHome:        {models.CategoryElectronics},
	models.CategorySports:      {models.CategoryClothing},
	models.CategoryBeauty:      {models.CategoryClothing},
}

// CrossCategories returns the follow-up categories of c, possibly none.
func CrossCategories(c models.Category) []models.Category {
	return crossCategory[c]
}

// CategoryWeights returns purchase weights in AllCategories order.
func CategoryWeights() []float64 {
	w := make([]float64, len(models.AllCategories))
	for i, c := range models.AllCategories {
		w[i] = categories[c].Weight
	}
	return w
}

// ProductCount sizes the shared product pool for a customer scale.
func ProductCount(customerScale int) int {
	switch {
	case customerScale <= 1_000_000:
		return 10_000
	case customerScale <= 10_000_000:
		return 25_000
	default:
		return 50_000
	}
}

// Catalog is the materialized product pool with lookup indexes.
type Catalog struct {
	Products   []models.Product
	byCategory map[models.Category][]int
	byBrand    map[string]map[models.Category][]int
}

func NewCatalog(products []models.Product) *Catalog {
	c := &Catalog{
		Products:   products,
		byCategory: make(map[models.Category][]int),
		byBrand:    make(map[string]map[models.Category][]int),
	}
	for i, p := range products {
		c.byCategory[p.Category] = append(c.byCategory[p.Category], i)
		if c.byBrand[p.Brand] == nil {
			c.byBrand[p.Brand] = make(map[models.Category][]int)
		}
		c.byBrand[p.Brand][p.Category] = append(c.byBrand[p.Brand][p.Category], i)
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.Products)
}

// InCategory returns indexes of products in the category.
func (c *Catalog) InCategory(cat models.Category) []int {
	return c.byCategory[cat]
}

// BrandCategories returns, per category, the products of one brand.
func (c *Catalog) BrandCategories(brand string) map[models.Category][]int {
	return c.byBrand[brand]
}
