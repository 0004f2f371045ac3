// Package weather fetches daily observations for a region from the
// Open-Meteo API.
package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trailcast/internal/external"
	"trailcast/internal/types"
)

const (
	dateLayout  = "2006-01-02"
	dailyFields = "precipitation_sum,temperature_2m_max,temperature_2m_min,relative_humidity_2m_mean"
)

// dailyResponse is the subset of the Open-Meteo forecast response we read.
// Values are pointers because the API reports missing data as null.
type dailyResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
		Temperature2mMax []*float64 `json:"temperature_2m_max"`
		Temperature2mMin []*float64 `json:"temperature_2m_min"`
		HumidityMean     []*float64 `json:"relative_humidity_2m_mean"`
	} `json:"daily"`
}

// OpenMeteoClient reads daily history and today's values at a region centre.
type OpenMeteoClient struct {
	base     *external.BaseClient
	baseURL  string
	timezone string
}

// NewOpenMeteoClient creates a client against baseURL (for example
// https://api.open-meteo.com). Daily boundaries follow loc.
func NewOpenMeteoClient(httpClient *http.Client, baseURL, userAgent string, loc *time.Location, opts ...external.BaseClientOption) *OpenMeteoClient {
	return NewOpenMeteoClientWithBase(
		external.NewBaseClient(httpClient, "open-meteo", external.DefaultRetryPolicy(), userAgent, opts...),
		baseURL, loc,
	)
}

// NewOpenMeteoClientWithBase creates a client over an existing BaseClient.
func NewOpenMeteoClientWithBase(base *external.BaseClient, baseURL string, loc *time.Location) *OpenMeteoClient {
	if loc == nil {
		loc = time.UTC
	}
	return &OpenMeteoClient{
		base:     base,
		baseURL:  strings.TrimRight(baseURL, "/"),
		timezone: loc.String(),
	}
}

// FetchDaily returns one WeatherDay per day in [from, to] for the region.
// Days without a temperature reading are dropped. Missing or negative
// precipitation counts as zero and missing humidity as 0%.
func (c *OpenMeteoClient) FetchDaily(ctx context.Context, region types.Region, from, to time.Time) ([]types.WeatherDay, error) {
	if to.Before(from) {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidDate,
			fmt.Sprintf("window end %s is before start %s", to.Format(dateLayout), from.Format(dateLayout)), nil)
	}

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(region.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(region.Lon, 'f', 4, 64))
	q.Set("daily", dailyFields)
	q.Set("start_date", from.Format(dateLayout))
	q.Set("end_date", to.Format(dateLayout))
	q.Set("timezone", c.timezone)
	q.Set("precipitation_unit", "mm")
	q.Set("temperature_unit", "celsius")

	var resp dailyResponse
	if err := c.base.GetJSON(ctx, c.baseURL+"/v1/forecast?"+q.Encode(), &resp); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("failed to fetch weather for region %s", region.Name), err)
	}
	return toWeatherDays(region.Name, resp)
}

func toWeatherDays(region string, resp dailyResponse) ([]types.WeatherDay, error) {
	d := resp.Daily
	n := len(d.Time)
	if len(d.PrecipitationSum) != n || len(d.Temperature2mMax) != n || len(d.Temperature2mMin) != n {
		return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
			fmt.Sprintf("daily series for region %s have mismatched lengths", region), nil)
	}

	days := make([]types.WeatherDay, 0, n)
	for i, raw := range d.Time {
		date, err := time.Parse(dateLayout, raw)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeUpstreamWeather,
				fmt.Sprintf("invalid date %q in daily series", raw), err)
		}
		if d.Temperature2mMax[i] == nil || d.Temperature2mMin[i] == nil {
			continue
		}
		day := types.WeatherDay{
			Region:   region,
			Date:     date,
			TempMaxC: *d.Temperature2mMax[i],
			TempMinC: *d.Temperature2mMin[i],
		}
		if p := d.PrecipitationSum[i]; p != nil && *p > 0 {
			day.PrecipitationMM = *p
		}
		if i < len(d.HumidityMean) && d.HumidityMean[i] != nil {
			day.HumidityPct = int(math.Round(*d.HumidityMean[i]))
		}
		days = append(days, day)
	}
	return days, nil
}
