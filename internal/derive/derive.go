// Package derive holds the pure arithmetic shared by the dashboard pages and
// the collector's alert evaluation: tariff cost derivation and the usage
// severity classification.
package derive

import "github.com/gridwatch/powerdash/internal/domain"

// Flat residential tariff in local currency per kWh, and the fixed
// local-per-USD conversion used for the secondary cost display.
const (
	TariffPerKWh = 1444.70
	LocalPerUSD  = 15500.0
)

type Period string

const (
	Hourly  Period = "hourly"
	Daily   Period = "daily"
	Monthly Period = "monthly"
)

type Status int

const (
	VeryLow Status = iota
	Low
	Normal
	High
	VeryHigh
)

func (s Status) String() string {
	switch s {
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Normal:
		return "normal"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	}
	return "unknown"
}

// Ascending bucket boundaries in kWh. A usage u falls in the first bucket
// whose boundary is strictly greater than u; past the last boundary it is
// VeryHigh. Boundaries are inclusive on the upper bucket (8.0 daily is
// Normal, not Low).
var thresholds = map[Period][4]float64{
	Hourly:  {0.1, 0.3, 0.8, 1.5},
	Daily:   {3, 8, 15, 25},
	Monthly: {90, 240, 450, 750},
}

var descriptions = [5]string{
	"Usage well below typical for this period",
	"Usage below typical for this period",
	"Usage within the normal range",
	"Usage above typical, consider reducing load",
	"Usage far above typical, check for faulty equipment",
}

// Classify buckets a kWh usage figure against the period's thresholds.
// Unknown periods fall back to the daily table.
func Classify(usage float64, period Period) (Status, string) {
	t, ok := thresholds[period]
	if !ok {
		t = thresholds[Daily]
	}
	status := VeryHigh
	for i, upper := range t {
		if usage < upper {
			status = Status(i)
			break
		}
	}
	return status, descriptions[status]
}

type Cost struct {
	Local float64 `json:"local"`
	USD   float64 `json:"usd"`
}

// CostOf prices a kWh figure at the flat tariff. No rounding here; the
// display layer formats.
func CostOf(kwh float64) Cost {
	local := kwh * TariffPerKWh
	return Cost{Local: local, USD: local / LocalPerUSD}
}

func WattsToKWh(watts float64, hours float64) float64 {
	return watts / 1000 * hours
}

// AveragePower over a set of readings; zero for an empty slice.
func AveragePower(readings []domain.PowerReading) float64 {
	if len(readings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range readings {
		sum += r.PowerWatts
	}
	return sum / float64(len(readings))
}

// PeakPower over a set of readings; zero for an empty slice.
func PeakPower(readings []domain.PowerReading) float64 {
	var peak float64
	for _, r := range readings {
		if r.PowerWatts > peak {
			peak = r.PowerWatts
		}
	}
	return peak
}
