package factories

import (
	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/lucsky/cuid"
)

var allCuisines = []string{
	"Italian", "Indian", "American", "Japanese", "Mexican", "Chinese",
	"Thai", "Greek", "French", "Mediterranean", "Burgers", "Pizza",
}

type RestaurantFactory struct {
	src    *source
	center models.Location
	radius float64
}

func (rf *RestaurantFactory) CreateRestaurant() *models.Restaurant {
	return &models.Restaurant{
		ID:          cuid.New(),
		Name:        rf.src.fake.Company().Name(),
		CuisineType: rf.src.pick(allCuisines),
		Location:    rf.src.pointNear(rf.center, rf.radius),
	}
}
