// Package astro computes daylight totals for a position on Earth. It backs the
// conversion of "percent possible sunshine" rows into sunshine hours.
package astro

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	"github.com/nathan-osman/go-sunrise"
)

// Day lengths are summed over a fixed non-leap year so that a month's total
// is stable regardless of when a lookup runs.
const referenceYear = 2013

// Altitude of the sun's centre at sunrise, in degrees, matching the constant
// built into sunrise.HourAngle.
const sunriseAltitude = -0.833

const degree = math.Pi / 180

// Service resolves places to observers from their article coordinates and
// computes monthly daylight totals.
type Service struct {
	pages  domain.PageFetcher
	logger *slog.Logger
}

// NewService creates a Service that looks places up through pages.
func NewService(pages domain.PageFetcher, logger *slog.Logger) *Service {
	return &Service{pages: pages, logger: logger}
}

// ResolveObserver fetches the article for place and reads its coordinates.
func (s *Service) ResolveObserver(ctx context.Context, place string) (domain.Observer, bool) {
	page, err := s.pages.FetchPage(ctx, place)
	if err != nil {
		s.logger.Warn("observer lookup failed", "place", place, "error", err)
		return domain.Observer{}, false
	}
	if !page.Found {
		return domain.Observer{}, false
	}
	coords, ok := domain.ParseCoordinates(page.Body)
	if !ok {
		s.logger.Debug("no coordinates for observer", "place", place)
		return domain.Observer{}, false
	}
	return domain.Observer{Name: page.Title, Coordinates: coords}, true
}

// DayLength returns the total time the sun is above the horizon over month
// (1-12) at the observer's position.
func (s *Service) DayLength(obs domain.Observer, month int) time.Duration {
	if month < 1 || month > 12 {
		return 0
	}

	var total time.Duration
	first := time.Date(referenceYear, time.Month(month), 1, 12, 0, 0, 0, time.UTC)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		hours := daylightHours(obs.Coordinates, d)
		total += time.Duration(hours * float64(time.Hour))
	}
	return total
}

// daylightHours returns the hours between sunrise and sunset on day. Polar day
// and polar night clamp to 24 and 0.
func daylightHours(c domain.Coordinates, day time.Time) float64 {
	d := sunrise.MeanSolarNoon(c.Lng, day.Year(), day.Month(), day.Day())
	anomaly := sunrise.SolarMeanAnomaly(d)
	center := sunrise.EquationOfCenter(anomaly)
	decl := sunrise.Declination(sunrise.EclipticLongitude(anomaly, center, d))

	omega := sunrise.HourAngle(c.Lat, decl)
	if c.HasElevation && c.Elevation > 0 {
		omega = elevatedHourAngle(c.Lat, decl, c.Elevation)
	}
	switch omega {
	case math.MaxFloat64:
		return 0
	case -math.MaxFloat64:
		return 24
	}
	return 2 * omega / 15
}

// elevatedHourAngle is sunrise.HourAngle with the horizon lowered by the dip
// seen from elevation metres up. It uses the same never-rises and never-sets
// sentinels.
func elevatedHourAngle(lat, decl, elevation float64) float64 {
	altitude := (sunriseAltitude - 2.076*math.Sqrt(elevation)/60) * degree
	phi := lat * degree
	delta := decl * degree

	cosOmega := (math.Sin(altitude) - math.Sin(phi)*math.Sin(delta)) / (math.Cos(phi) * math.Cos(delta))
	switch {
	case cosOmega > 1:
		return math.MaxFloat64
	case cosOmega < -1:
		return -math.MaxFloat64
	}
	return math.Acos(cosOmega) / degree
}
