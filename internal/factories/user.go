package factories

import (
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/lucsky/cuid"
)

// CustomerSegment sets how often and when a generated user orders.
type CustomerSegment struct {
	Name        string
	Ratio       float64
	OrdersDaily float64
	Hours       map[time.Weekday][]int
}

func everyDay(hours ...int) map[time.Weekday][]int {
	m := make(map[time.Weekday][]int, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		m[day] = hours
	}
	return m
}

var DefaultCustomerSegments = []CustomerSegment{
	{Name: "frequent", Ratio: 0.2, OrdersDaily: 0.6, Hours: func() map[time.Weekday][]int {
		h := everyDay(12, 13, 19, 20, 21)
		h[time.Friday] = []int{12, 13, 19, 20, 21, 22}
		h[time.Saturday] = []int{12, 13, 19, 20, 21, 22}
		return h
	}()},
	{Name: "regular", Ratio: 0.5, OrdersDaily: 0.3, Hours: func() map[time.Weekday][]int {
		h := everyDay(12, 13, 19, 20)
		h[time.Saturday] = []int{13, 14, 19, 20, 21}
		h[time.Sunday] = []int{13, 14, 19, 20, 21}
		return h
	}()},
	{Name: "occasional", Ratio: 0.3, OrdersDaily: 0.1, Hours: everyDay(12, 19)},
}

// habit is the hidden routine a generated user follows, which the
// analyzers are expected to recover from the order history.
type habit struct {
	segment      CustomerSegment
	favouriteDay time.Weekday
	favouriteAt  int
	restaurant   *models.Restaurant
	items        []*models.MenuItem
}

type UserFactory struct {
	src    *source
	center models.Location
	radius float64
}

func (uf *UserFactory) assignSegment() CustomerSegment {
	r := uf.src.rng.Float64()
	acc := 0.0
	for _, seg := range DefaultCustomerSegments {
		acc += seg.Ratio
		if r < acc {
			return seg
		}
	}
	return DefaultCustomerSegments[len(DefaultCustomerSegments)-1]
}

func (uf *UserFactory) CreateUser(joinedBefore time.Time) *models.User {
	return &models.User{
		ID:       cuid.New(),
		Name:     uf.src.fake.Person().Name(),
		JoinDate: uf.src.timeBetween(joinedBefore.AddDate(-1, 0, 0), joinedBefore),
		IsActive: uf.src.rng.Float64() > 0.05,
		Location: uf.src.pointNear(uf.center, uf.radius),
	}
}

func (uf *UserFactory) createHabit(restaurants []*models.Restaurant, menus map[string][]*models.MenuItem) habit {
	seg := uf.assignSegment()
	day := time.Weekday(uf.src.rng.Intn(7))
	hours := seg.Hours[day]
	h := habit{
		segment:      seg,
		favouriteDay: day,
		favouriteAt:  hours[uf.src.rng.Intn(len(hours))],
		restaurant:   restaurants[uf.src.rng.Intn(len(restaurants))],
	}
	menu := menus[h.restaurant.ID]
	if len(menu) > 0 {
		n := 1 + uf.src.rng.Intn(min(2, len(menu)))
		for _, idx := range uf.src.rng.Perm(len(menu))[:n] {
			h.items = append(h.items, menu[idx])
		}
	}
	return h
}
