package reading

// Reading is a single timestamped weather observation. The JSON field names
// follow the Open-Meteo export the collection was originally seeded from.
type Reading struct {
	ID                       string  `json:"id"`
	Time                     string  `json:"time"`
	Temperature              float64 `json:"temperature_2m_C"`
	Humidity                 float64 `json:"relative_humidity_2m_percent"`
	DewPoint                 float64 `json:"dew_point_2m_C"`
	ApparentTemperature      float64 `json:"apparent_temperature_C"`
	PrecipitationProbability float64 `json:"precipitation_probability_percent"`
	Precipitation            float64 `json:"precipitation_mm"`
	Rain                     float64 `json:"rain_mm"`
	Showers                  float64 `json:"showers_mm"`
	SurfacePressure          float64 `json:"surface_pressure_hPa"`
	Visibility               float64 `json:"visibility_m"`
	CloudCoverHigh           float64 `json:"cloud_cover_high_percent"`
	CloudCoverMid            float64 `json:"cloud_cover_mid_percent"`
	CloudCoverLow            float64 `json:"cloud_cover_low_percent"`
}

// Patch carries a partial update for a Reading. Nil fields are left untouched.
type Patch struct {
	Time                     *string
	Temperature              *float64
	Humidity                 *float64
	DewPoint                 *float64
	ApparentTemperature      *float64
	PrecipitationProbability *float64
	Precipitation            *float64
	Rain                     *float64
	Showers                  *float64
	SurfacePressure          *float64
	Visibility               *float64
	CloudCoverHigh           *float64
	CloudCoverMid            *float64
	CloudCoverLow            *float64
}

// Apply merges the patch into a copy of r and returns it.
func (p Patch) Apply(r Reading) Reading {
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Temperature != nil {
		r.Temperature = *p.Temperature
	}
	if p.Humidity != nil {
		r.Humidity = *p.Humidity
	}
	if p.DewPoint != nil {
		r.DewPoint = *p.DewPoint
	}
	if p.ApparentTemperature != nil {
		r.ApparentTemperature = *p.ApparentTemperature
	}
	if p.PrecipitationProbability != nil {
		r.PrecipitationProbability = *p.PrecipitationProbability
	}
	if p.Precipitation != nil {
		r.Precipitation = *p.Precipitation
	}
	if p.Rain != nil {
		r.Rain = *p.Rain
	}
	if p.Showers != nil {
		r.Showers = *p.Showers
	}
	if p.SurfacePressure != nil {
		r.SurfacePressure = *p.SurfacePressure
	}
	if p.Visibility != nil {
		r.Visibility = *p.Visibility
	}
	if p.CloudCoverHigh != nil {
		r.CloudCoverHigh = *p.CloudCoverHigh
	}
	if p.CloudCoverMid != nil {
		r.CloudCoverMid = *p.CloudCoverMid
	}
	if p.CloudCoverLow != nil {
		r.CloudCoverLow = *p.CloudCoverLow
	}
	return r
}

// Filter describes a multi-criteria search over the collection.
// Nil bounds are unconstrained; date bounds are day strings (YYYY-MM-DD).
type Filter struct {
	MinTemperature   *float64
	MaxTemperature   *float64
	MinHumidity      *float64
	MaxHumidity      *float64
	MinPrecipitation *float64
	MaxPrecipitation *float64

	// StartTime/EndTime are full lexical bounds on the time column. The
	// service derives them from day-granularity inputs.
	StartTime string
	EndTime   string

	SortField string
	SortDesc  bool
	Limit     int
}

// RangeStats summarizes all readings matched by a range predicate.
type RangeStats struct {
	AvgTemperature     float64 `json:"avgTemperature"`
	MinTemperature     float64 `json:"minTemperature"`
	MaxTemperature     float64 `json:"maxTemperature"`
	AvgHumidity        float64 `json:"avgHumidity"`
	TotalPrecipitation float64 `json:"totalPrecipitation"`
	RecordCount        int     `json:"recordCount"`
}

// HourlyStat is one hour-of-day bucket for a single calendar day.
// Hour is the two-digit hour substring of the timestamp ("00".."23").
type HourlyStat struct {
	Hour               string  `json:"hour"`
	AvgTemperature     float64 `json:"avgTemperature"`
	AvgHumidity        float64 `json:"avgHumidity"`
	TotalPrecipitation float64 `json:"totalPrecipitation"`
}

// SortFields enumerates the JSON field names a caller may sort by.
var SortFields = map[string]bool{
	"time":                         true,
	"temperature_2m_C":             true,
	"relative_humidity_2m_percent": true,
	"precipitation_mm":             true,
}
