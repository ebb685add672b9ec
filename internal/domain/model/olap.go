package model

// OtherCategory collects OLAP rows that come back without a dish category.
const OtherCategory = "Другие"

// OlapRow is one dish line of the sales OLAP report.
type OlapRow struct {
	// DishCategory is nil for dishes without a category
	DishCategory *string `json:"DishCategory"`
	// DishName is the dish title
	DishName string `json:"DishName"`
	// DishDiscountSumInt is revenue after discounts
	DishDiscountSumInt float64 `json:"DishDiscountSumInt"`
	// GuestNum is the number of guests who ordered the dish
	GuestNum uint32 `json:"GuestNum"`
}

// OlapGroup keeps rows per category in the order categories were first seen.
type OlapGroup struct {
	// Categories lists category names in first-seen order
	Categories []string `json:"categories"`
	// Rows maps a category name to its rows
	Rows map[string][]OlapRow `json:"rows"`
}

// NewOlapGroup returns an empty group ready for Add.
func NewOlapGroup() OlapGroup {
	return OlapGroup{Rows: make(map[string][]OlapRow)}
}

// Add appends row to category, registering the category on first use.
func (g *OlapGroup) Add(category string, row OlapRow) {
	if g.Rows == nil {
		g.Rows = make(map[string][]OlapRow)
	}
	if _, ok := g.Rows[category]; !ok {
		g.Categories = append(g.Categories, category)
	}
	g.Rows[category] = append(g.Rows[category], row)
}

// Lookup returns the rows of category and whether it exists.
func (g OlapGroup) Lookup(category string) ([]OlapRow, bool) {
	rows, ok := g.Rows[category]
	return rows, ok
}

// IsEmpty reports whether the group has no categories.
func (g OlapGroup) IsEmpty() bool {
	return len(g.Categories) == 0
}

// Len counts rows across all categories.
func (g OlapGroup) Len() int {
	total := 0
	for _, rows := range g.Rows {
		total += len(rows)
	}
	return total
}
