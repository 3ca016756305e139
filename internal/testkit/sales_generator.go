package testkit

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/StephenStolk/analyseX-sub001/domain/dataset"
)

// SalesGeneratorConfig configures the monthly sales fixture
type SalesGeneratorConfig struct {
	Months        int       `json:"months"`
	BaseRevenue   float64   `json:"base_revenue"`
	Growth        float64   `json:"growth"`         // revenue added per month
	SeasonAmp     float64   `json:"season_amp"`     // amplitude of the 12 month cycle
	Noise         float64   `json:"noise"`          // standard deviation of the revenue noise
	SpendRatio    float64   `json:"spend_ratio"`    // marketing spend as a share of revenue
	MissingRate   float64   `json:"missing_rate"`   // share of blank marketing_spend cells
	AnomalyMonths []int     `json:"anomaly_months"` // row indices whose revenue is tripled
	StartDate     time.Time `json:"start_date"`
	Seed          int64     `json:"seed"`
}

// DefaultSalesConfig returns three years of growing, seasonal revenue
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		Months:      36,
		BaseRevenue: 1000,
		Growth:      15,
		SeasonAmp:   120,
		Noise:       20,
		SpendRatio:  0.1,
		MissingRate: 0,
		StartDate:   time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Seed:        42,
	}
}

// SalesDataGenerator generates monthly sales rows
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a generator; equal seeds give equal rows
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var regions = []string{"north", "south", "east", "west"}

// SalesColumns is the header order of generated rows
var SalesColumns = []string{"month", "region", "revenue", "marketing_spend", "returns"}

// Generate builds one row per month. Cells are strings, as they arrive from a CSV upload.
func (g *SalesDataGenerator) Generate() []dataset.Row {
	anomalies := make(map[int]bool, len(g.config.AnomalyMonths))
	for _, i := range g.config.AnomalyMonths {
		anomalies[i] = true
	}

	rows := make([]dataset.Row, 0, g.config.Months)
	for i := 0; i < g.config.Months; i++ {
		month := g.config.StartDate.AddDate(0, i, 0)
		revenue := g.revenueAt(i)
		if anomalies[i] {
			revenue *= 3
		}
		spend := revenue*g.config.SpendRatio + g.rng.NormFloat64()*g.config.Noise*g.config.SpendRatio

		row := dataset.Row{
			"month":           month.Format("2006-01-02"),
			"region":          regions[i%len(regions)],
			"revenue":         formatFloat(revenue),
			"marketing_spend": formatFloat(spend),
			"returns":         strconv.Itoa(g.rng.Intn(40) + 10),
		}
		if g.rng.Float64() < g.config.MissingRate {
			row["marketing_spend"] = ""
		}
		rows = append(rows, row)
	}
	return rows
}

func (g *SalesDataGenerator) revenueAt(i int) float64 {
	season := g.config.SeasonAmp * math.Sin(2*math.Pi*float64(i)/12)
	return g.config.BaseRevenue + g.config.Growth*float64(i) + season + g.rng.NormFloat64()*g.config.Noise
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
