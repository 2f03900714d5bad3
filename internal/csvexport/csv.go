package csvexport

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/go-authgate/stravaexport/internal/models"
)

// Header is the first line of every export.
const Header = "name,distance,time,elevation_gain,moving_time,average_heartrate,max_heartrate\n"

// MilesPerMeter converts Strava distances (meters) to miles.
const MilesPerMeter = 0.000621371

// Source yields activities one at a time. *strava.ActivityIterator satisfies it.
type Source interface {
	Next(ctx context.Context) bool
	Activity() models.Activity
	Err() error
}

// Missing is written in place of a field Strava left out.
const Missing = "undefined"

// Row renders one activity as a newline terminated CSV line.
// Commas are removed from the name; no other quoting is applied.
// Absent fields print as Missing, except distance, whose mile
// conversion of an absent value prints as NaN.
func Row(a models.Activity) string {
	distance := math.NaN()
	if a.Distance != nil {
		distance = MetersToMiles(*a.Distance)
	}

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(a.Name, ",", ""))
	b.WriteByte(',')
	b.WriteString(FormatNumber(distance))
	b.WriteByte(',')
	b.WriteString(text(a.StartDate))
	b.WriteByte(',')
	b.WriteString(number(a.TotalElevationGain))
	b.WriteByte(',')
	b.WriteString(number(a.MovingTime))
	if a.HasHeartrate {
		b.WriteByte(',')
		b.WriteString(number(a.AverageHeartrate))
		b.WriteByte(',')
		b.WriteString(number(a.MaxHeartrate))
	} else {
		b.WriteString(",,")
	}
	b.WriteByte('\n')
	return b.String()
}

func number(f *float64) string {
	if f == nil {
		return Missing
	}
	return FormatNumber(*f)
}

func text(s *string) string {
	if s == nil {
		return Missing
	}
	return *s
}

// Build drains src into a complete CSV document. Nothing is returned
// when the source fails part way.
func Build(ctx context.Context, src Source) (string, int, error) {
	var b strings.Builder
	b.WriteString(Header)

	count := 0
	for src.Next(ctx) {
		b.WriteString(Row(src.Activity()))
		count++
	}
	if err := src.Err(); err != nil {
		return "", 0, err
	}
	return b.String(), count, nil
}

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(meters float64) float64 {
	return meters * MilesPerMeter
}

// FormatNumber renders f as the shortest decimal that round-trips,
// switching to exponent notation below 1e-6 and from 1e21 upwards.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return formatExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatExponent rewrites Go's "1.5e-07" / "1e+21" into "1.5e-7" / "1e+21".
func formatExponent(s string) string {
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
