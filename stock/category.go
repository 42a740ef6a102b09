package stock

// Category is the type tag of an item, as written in records
type Category string

const (
	Fruit    Category = "fruta"
	Beverage Category = "bebida"
	Candy    Category = "doce"
	Snack    Category = "salgado"
	Canned   Category = "enlatado"
)

// CategoryInfo binds a category to the store holding its items
type CategoryInfo struct {
	Category  Category
	StoreName string
}

// Categories lists known categories in the order stores are processed
var Categories = []CategoryInfo{
	{Fruit, "ListaFrutas"},
	{Beverage, "ListaBebidas"},
	{Candy, "ListaDoces"},
	{Snack, "ListaSalgados"},
	{Canned, "ListaEnlatados"},
}

// StoreFor returns the name of the store for category c.
// Returns false for unknown categories, which have no store.
func StoreFor(c Category) (string, bool) {
	for _, ci := range Categories {
		if ci.Category == c {
			return ci.StoreName, true
		}
	}
	return "", false
}

// Known returns true if c is one of the categories in Categories
func (c Category) Known() bool {
	_, ok := StoreFor(c)
	return ok
}

// StoreNames returns names of all category stores
func StoreNames() []string {
	res := make([]string, len(Categories))
	for i, ci := range Categories {
		res[i] = ci.StoreName
	}
	return res
}
