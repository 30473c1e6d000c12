package service

import (
	"context"
	"math"
)

// DefaultForecastDays is the forecast horizon when none is given.
const DefaultForecastDays = 30

// ForecastDay is the projected occupancy of one calendar day.
type ForecastDay struct {
	Date               string  `json:"date"`
	Arrivals           int64   `json:"arrivals"`
	Departures         int64   `json:"departures"`
	ProjectedOccupancy int64   `json:"projected_occupancy"`
	OccupancyRate      float64 `json:"occupancy_rate"`
}

// Forecast is the occupancy projection from today onwards.
type Forecast struct {
	TotalRooms   int64         `json:"total_rooms"`
	ForecastData []ForecastDay `json:"forecast_data"`
}

// OccupancyForecast projects occupancy for today and the following
// days: rooms occupied now plus the running total of arrivals minus
// departures.
func (s *HotelService) OccupancyForecast(ctx context.Context, days int) (Forecast, error) {
	if err := checkHorizon(days); err != nil {
		return Forecast{}, err
	}
	total, occupied, err := s.reports.RoomCounts(ctx)
	if err != nil {
		return Forecast{}, classify(err)
	}
	today := s.Today()
	last := today.AddDays(days)
	arrivals, err := s.reports.ArrivalCounts(ctx, today, last)
	if err != nil {
		return Forecast{}, classify(err)
	}
	departures, err := s.reports.DepartureCounts(ctx, today, last)
	if err != nil {
		return Forecast{}, classify(err)
	}

	out := Forecast{TotalRooms: total, ForecastData: make([]ForecastDay, 0, days+1)}
	running := occupied
	for i := 0; i <= days; i++ {
		key := today.AddDays(i).String()
		a, d := arrivals[key], departures[key]
		running += a - d
		day := ForecastDay{Date: key, Arrivals: a, Departures: d, ProjectedOccupancy: running}
		if total > 0 {
			day.OccupancyRate = math.Round(float64(running)*100/float64(total)*100) / 100
		}
		out.ForecastData = append(out.ForecastData, day)
	}
	return out, nil
}
