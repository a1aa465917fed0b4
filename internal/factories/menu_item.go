package factories

import (
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/lucsky/cuid"
)

var dishesByCuisine = map[string][]string{
	"Pizza":         {"Margherita", "Pepperoni", "Hawaiian", "Veggie Supreme"},
	"Burgers":       {"Classic Cheeseburger", "Veggie Burger", "BBQ Bacon Burger", "Mushroom Swiss Burger"},
	"Italian":       {"Margherita Pizza", "Spaghetti Carbonara", "Lasagna", "Tiramisu"},
	"Indian":        {"Chicken Tikka Masala", "Vegetable Curry", "Naan Bread", "Biryani"},
	"American":      {"Cheeseburger", "Hot Dog", "BBQ Ribs", "Apple Pie"},
	"Japanese":      {"Sushi Roll", "Ramen", "Tempura", "Miso Soup"},
	"Mexican":       {"Tacos", "Burrito", "Guacamole", "Quesadilla"},
	"Chinese":       {"Kung Pao Chicken", "Fried Rice", "Dumplings", "Mapo Tofu"},
	"Thai":          {"Pad Thai", "Green Curry", "Tom Yum Soup", "Mango Sticky Rice"},
	"Greek":         {"Gyros", "Greek Salad", "Moussaka", "Baklava"},
	"French":        {"Coq au Vin", "Beef Bourguignon", "Ratatouille", "Crème Brûlée"},
	"Mediterranean": {"Falafel", "Hummus", "Tabbouleh", "Grilled Halloumi"},
}

var menuItemTypes = []string{"appetizer", "main course", "side dish", "dessert", "drink"}

type MenuItemFactory struct {
	src    *source
	dishes []models.MenuDish
}

// CreateMenuItem names the item from the configured dish list when present,
// otherwise from the restaurant's cuisine.
func (mf *MenuItemFactory) CreateMenuItem(restaurant *models.Restaurant) *models.MenuItem {
	name, category := "Special of the Day", mf.src.pick(menuItemTypes)
	if len(mf.dishes) > 0 {
		dish := mf.dishes[mf.src.rng.Intn(len(mf.dishes))]
		name = dish.Name
		if dish.Category != "" {
			category = dish.Category
		}
	} else if items, ok := dishesByCuisine[restaurant.CuisineType]; ok {
		name = mf.src.pick(items)
	}
	return &models.MenuItem{
		ID:           cuid.New(),
		RestaurantID: restaurant.ID,
		Name:         name,
		Price:        mf.src.fake.Float64(2, 5, 30),
		Category:     category,
		IsAvailable:  mf.src.rng.Float64() > 0.05,
	}
}
