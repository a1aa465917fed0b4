package factories

import (
	"math"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodpredict/internal/models"
	"github.com/jaswdr/faker"
)

// source is the shared randomness of one generation run. A fixed seed gives
// the same dataset on every run.
type source struct {
	rng  *rand.Rand
	fake faker.Faker
}

func newSource(seed int64) *source {
	return &source{
		rng:  rand.New(rand.NewSource(seed)),
		fake: faker.NewWithSeed(rand.NewSource(seed)),
	}
}

func (s *source) pick(items []string) string {
	return items[s.rng.Intn(len(items))]
}

// pointNear returns a uniformly random point within radiusKm of center.
func (s *source) pointNear(center models.Location, radiusKm float64) models.Location {
	latRange := radiusKm / 111.0
	lonRange := latRange / math.Cos(center.Lat*math.Pi/180.0)
	return models.Location{
		Lat: center.Lat + (s.rng.Float64()*2-1)*latRange,
		Lon: center.Lon + (s.rng.Float64()*2-1)*lonRange,
	}
}

func (s *source) timeBetween(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(s.rng.Int63n(int64(span))))
}
