package sheet

import "strings"

// Profile describes the column layout of a BOQ or estimate table. Each
// column is matched by any of its aliases, case and spacing ignored.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name     string
	Section  []string // optional
	Code     []string // optional
	ItemName []string
	Unit     []string
	Quantity []string
	Price    []string // required when RequirePrice is set
	// RequirePrice makes Price part of the header match.
	RequirePrice bool
}

var (
	aliasSection  = []string{"Раздел", "Глава"}
	aliasCode     = []string{"Шифр", "Обоснование", "Код", "Шифр расценки"}
	aliasItemName = []string{"Наименование работ", "Наименование работ и затрат", "Наименование", "Наименование работ и материалов"}
	aliasUnit     = []string{"Ед. изм.", "Ед.изм.", "Ед. изм", "Единица измерения", "Ед."}
	aliasQuantity = []string{"Количество", "Кол-во", "Кол."}
	aliasPrice    = []string{"Цена", "Цена за ед.", "Цена за единицу", "Стоимость единицы", "Цена, руб."}
)

// profiles is the ordered list of layouts tried during auto-detection.
// More specific profiles come first.
var profiles = []Profile{
	{
		Name:         "Смета",
		Section:      aliasSection,
		Code:         aliasCode,
		ItemName:     aliasItemName,
		Unit:         aliasUnit,
		Quantity:     aliasQuantity,
		Price:        aliasPrice,
		RequirePrice: true,
	},
	{
		Name:     "ВОР",
		Section:  aliasSection,
		Code:     aliasCode,
		ItemName: aliasItemName,
		Unit:     aliasUnit,
		Quantity: aliasQuantity,
		Price:    aliasPrice,
	},
}

// columns maps a resolved field of a profile to its index, -1 when absent.
type columns struct {
	section, code, name, unit, quantity, price int
}

// normalize folds case and collapses whitespace so "Ед.  изм." matches.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func find(header map[string]int, aliases []string) int {
	for _, a := range aliases {
		if i, ok := header[normalize(a)]; ok {
			return i
		}
	}

	return -1
}

// match resolves the profile against a header row.
func (p Profile) match(row []string) (columns, bool) {
	header := make(map[string]int, len(row))

	for i, cell := range row {
		name := normalize(cell)
		if _, seen := header[name]; name != "" && !seen {
			header[name] = i
		}
	}

	c := columns{
		section:  find(header, p.Section),
		code:     find(header, p.Code),
		name:     find(header, p.ItemName),
		unit:     find(header, p.Unit),
		quantity: find(header, p.Quantity),
		price:    find(header, p.Price),
	}

	if c.name < 0 || c.unit < 0 || c.quantity < 0 {
		return c, false
	}

	if p.RequirePrice && c.price < 0 {
		return c, false
	}

	return c, true
}
