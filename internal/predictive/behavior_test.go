package predictive

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProgress struct{ n int64 }

func (p *countingProgress) Add(num int) error {
	atomic.AddInt64(&p.n, int64(num))
	return nil
}

func seedSundayLunches(f *fixture, userID string) {
	f.restaurant("r1", "italian")
	f.menuItem("a", "r1", "Margherita", 10)
	f.menuItem("b", "r1", "Salad", 5)
	for _, day := range []int{2, 9, 16, 23} {
		f.delivered(userID, "r1", date(2024, time.June, day, 12, 30), item("a", 2, 10), item("b", 1, 5))
	}
}

func TestAnalyzeUserWithoutOrders(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	analyzer := NewBehaviorAnalyzer(f.repos, f.options())

	res, err := analyzer.AnalyzeUser(f.ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, res)

	profiles, err := analyzer.GetUserBehavior(f.ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestAnalyzeUserBuildsProfiles(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	f.restaurant("r2", "thai")
	f.menuItem("c", "r2", "Pad Thai", 8)
	f.delivered("u1", "r2", date(2024, time.June, 24, 19, 0), item("c", 1, 8))
	f.order("u1", "r2", models.OrderStatusCancelled, date(2024, time.June, 25, 19, 0), item("c", 4, 8))

	analyzer := NewBehaviorAnalyzer(f.repos, f.options())
	res, err := analyzer.AnalyzeUser(f.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 5, res.TotalOrders)
	assert.Equal(t, 21.6, res.AverageOrderValue)
	assert.Equal(t, 1.57, res.OrderFrequency)

	require.Len(t, res.PreferredCuisines, 2)
	assert.Equal(t, models.CuisinePreference{Cuisine: "italian", Count: 4, Percentage: 80}, res.PreferredCuisines[0])
	assert.Equal(t, models.CuisinePreference{Cuisine: "thai", Count: 1, Percentage: 20}, res.PreferredCuisines[1])

	require.Len(t, res.PreferredItems, 3)
	assert.Equal(t, "a", res.PreferredItems[0].MenuItemID)
	assert.Equal(t, 8, res.PreferredItems[0].TotalQuantity)
	assert.Equal(t, "b", res.PreferredItems[1].MenuItemID)
	assert.Equal(t, "c", res.PreferredItems[2].MenuItemID)

	require.Len(t, res.Profiles, 2)
	sunday := res.Profiles[0]
	assert.Equal(t, time.Sunday, sunday.DayOfWeek)
	assert.Equal(t, models.SlotLunch, sunday.TimeSlot)
	assert.Equal(t, 4, sunday.TotalOrders)
	assert.Equal(t, 25.0, sunday.AverageOrderValue)
	assert.Equal(t, date(2024, time.June, 23, 12, 30), sunday.LastOrderDate)
	assert.Equal(t, []string{"a", "b", "c"}, sunday.PreferredItems)
	assert.Equal(t, []models.ItemCount{{MenuItemID: "a", Count: 4}, {MenuItemID: "b", Count: 4}}, sunday.TopItems)

	monday := res.Profiles[1]
	assert.Equal(t, time.Monday, monday.DayOfWeek)
	assert.Equal(t, models.SlotEvening, monday.TimeSlot)
	assert.Equal(t, 1, monday.TotalOrders)
}

func TestAnalyzeUserUpsertsProfiles(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	analyzer := NewBehaviorAnalyzer(f.repos, f.options())

	_, err := analyzer.AnalyzeUser(f.ctx, "u1")
	require.NoError(t, err)
	f.delivered("u1", "r1", date(2024, time.June, 30, 12, 30), item("a", 1, 10))
	_, err = analyzer.AnalyzeUser(f.ctx, "u1")
	require.NoError(t, err)

	profiles, err := analyzer.GetUserBehavior(f.ctx, "u1")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 5, profiles[0].TotalOrders)
}

func TestItemQuantitiesAveragesPerLine(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	f.restaurant("r1", "italian")
	f.delivered("u1", "r1", date(2024, time.June, 2, 12, 0), item("a", 1, 10))
	f.delivered("u1", "r1", date(2024, time.June, 9, 12, 0), item("a", 2, 10))

	qty, err := NewBehaviorAnalyzer(f.repos, f.options()).ItemQuantities(f.ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1.5}, qty)
}

func TestAnalyzeAllUsers(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	seedSundayLunches(f, "u1")
	f.user("u1", true)
	f.user("u2", true)
	f.user("u3", false)

	progress := &countingProgress{}
	summary, err := NewBehaviorAnalyzer(f.repos, f.options()).AnalyzeAllUsers(f.ctx, 2, progress)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalUsers)
	assert.Equal(t, 1, summary.TotalAnalyzed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, f.now, summary.Timestamp)
	assert.EqualValues(t, 2, atomic.LoadInt64(&progress.n))
}

func TestOrderFrequency(t *testing.T) {
	base := date(2024, time.June, 1, 12, 0)
	assert.Equal(t, 0.0, orderFrequency(nil))
	assert.Equal(t, 0.0, orderFrequency([]models.Order{{CreatedAt: base}}))
	assert.Equal(t, 3.0, orderFrequency([]models.Order{
		{CreatedAt: base}, {CreatedAt: base.Add(time.Hour)}, {CreatedAt: base.Add(48 * time.Hour)},
	}))
	assert.Equal(t, 1.5, orderFrequency([]models.Order{
		{CreatedAt: base}, {CreatedAt: base.AddDate(0, 0, 7)}, {CreatedAt: base.AddDate(0, 0, 14)},
	}))
}

func TestProfileKeepsEveryRankedItem(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 30, 11, 0))
	f.restaurant("r1", "italian")
	var items []models.OrderItem
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("m%02d", i)
		f.menuItem(id, "r1", "Dish "+id, 4)
		items = append(items, item(id, 1, 4))
	}
	f.delivered("u1", "r1", date(2024, time.June, 23, 12, 30), items...)
	f.delivered("u1", "r1", date(2024, time.June, 16, 12, 30), item("m24", 1, 4))

	res, err := NewBehaviorAnalyzer(f.repos, f.options()).AnalyzeUser(f.ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Profiles, 1)

	preferred := res.Profiles[0].PreferredItems
	require.Len(t, preferred, 25)
	assert.Equal(t, "m24", preferred[0])
}
