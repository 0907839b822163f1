// Package scorer implements the disruption scoring pipeline: confidence and
// relevance scoring, impact assessment, alert classification and mitigation
// recommendations. All scoring is deterministic and table-driven so every
// alert score can be audited.
package scorer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Tables holds every fixed lookup table the scorers use. Defaults come from
// DefaultTables; a deployment can override individual tables from YAML.
type Tables struct {
	// SourceWeights is the per-source reliability table used by the
	// confidence scorer and the quality monitor's accuracy baseline.
	SourceWeights map[model.Source]float64 `yaml:"source_weights"`

	// DefaultSourceWeight applies to sources outside the known enumeration.
	DefaultSourceWeight float64 `yaml:"default_source_weight"`

	// SupplyChainKeywords is the keyword set for relevance/confidence
	// keyword-density scoring.
	SupplyChainKeywords []string `yaml:"supply_chain_keywords"`

	// Severity indicator wordlists, scanned critical tier first.
	CriticalIndicators []string `yaml:"critical_indicators"`
	WarningIndicators  []string `yaml:"warning_indicators"`
	WatchIndicators    []string `yaml:"watch_indicators"`

	// Tier1Hubs and MajorRegions drive the confidence geo score.
	Tier1Hubs    []string `yaml:"tier1_hubs"`
	MajorRegions []string `yaml:"major_regions"`

	// StrategicLocationKeywords grant the relevance location bonus.
	StrategicLocationKeywords []string `yaml:"strategic_location_keywords"`

	// Geographic impact tiers. Maintained independently of Tier1Hubs:
	// the impact tiers carry finer port-level granularity.
	ImpactTier1 []string `yaml:"impact_tier1"`
	ImpactTier2 []string `yaml:"impact_tier2"`
	ImpactTier3 []string `yaml:"impact_tier3"`

	// SectorKeywords maps each fixed sector to its keyword list.
	SectorKeywords map[string][]string `yaml:"sector_keywords"`

	// RouteLocations is the trade-route gazetteer: route name to the
	// location substrings that place an observation on that route.
	RouteLocations map[string][]string `yaml:"route_locations"`

	// RouteBaseDailyUsdMillions is the base daily trade volume per route.
	RouteBaseDailyUsdMillions map[string]float64 `yaml:"route_base_daily_usd_millions"`
}

// DefaultTables returns the built-in scoring tables.
func DefaultTables() *Tables {
	return &Tables{
		SourceWeights: map[model.Source]float64{
			model.SourceWeather:    0.90,
			model.SourceEarthquake: 0.95,
			model.SourceTransport:  0.80,
			model.SourceNews:       0.70,
		},
		DefaultSourceWeight: 0.50,

		SupplyChainKeywords: []string{
			"supply chain", "logistics", "shipping", "freight", "cargo",
			"port", "warehouse", "manufacturing", "factory", "trade",
			"import", "export", "customs", "border", "transportation",
			"distribution", "procurement", "supplier", "vendor",
		},

		CriticalIndicators: []string{
			"shutdown", "closed", "suspended", "halt", "blocked", "collapsed", "crisis",
		},
		WarningIndicators: []string{
			"delay", "disrupted", "reduced", "limited", "restricted", "strike",
			"shortage", "bottleneck",
		},
		WatchIndicators: []string{
			"monitoring", "potential", "risk", "concern", "weather", "planned",
		},

		Tier1Hubs: []string{
			"shanghai", "singapore", "rotterdam", "los angeles", "long beach",
			"shenzhen", "hamburg", "hong kong", "dubai", "busan", "antwerp",
			"ningbo", "suez canal", "panama canal", "memphis",
		},
		MajorRegions: []string{
			"china", "japan", "korea", "germany", "netherlands", "taiwan",
			"vietnam", "india", "united states", "usa", "uk", "europe", "asia",
			"egypt", "panama",
		},
		StrategicLocationKeywords: []string{
			"port", "airport", "hub", "terminal", "industrial", "manufacturing",
		},

		ImpactTier1: []string{
			"shanghai", "singapore", "rotterdam", "los angeles", "long beach",
			"suez", "panama", "hong kong",
		},
		ImpactTier2: []string{
			"shenzhen", "hamburg", "busan", "antwerp", "ningbo", "dubai",
			"new york", "tokyo",
		},
		ImpactTier3: []string{
			"oakland", "seattle", "savannah", "charleston", "houston",
			"bremerhaven", "felixstowe", "valencia",
		},

		SectorKeywords: map[string][]string{
			"electronics": {"semiconductor", "chip", "electronics", "fab", "display"},
			"automotive":  {"automotive", "vehicle", "car", "auto parts", "assembly plant"},
			"textiles":    {"textile", "garment", "apparel", "fabric", "cotton"},
			"energy":      {"oil", "gas", "refinery", "pipeline", "power plant"},
			"agriculture": {"grain", "wheat", "crop", "harvest", "fertilizer"},
		},

		RouteLocations: map[string][]string{
			"trans_pacific": {
				"pacific", "asia", "china", "japan", "korea", "shanghai",
				"shenzhen", "california", "los angeles", "long beach", "seattle",
			},
			"trans_atlantic": {
				"atlantic", "europe", "uk", "germany", "new york", "boston",
			},
			"asia_europe": {
				"suez", "mediterranean", "middle east", "singapore",
				"rotterdam", "shanghai", "hamburg",
			},
			"panama_canal": {
				"panama", "canal", "central america", "caribbean",
			},
			"suez_canal": {
				"suez", "egypt", "red sea", "mediterranean",
			},
		},

		RouteBaseDailyUsdMillions: map[string]float64{
			"trans_pacific":  50,
			"trans_atlantic": 30,
			"asia_europe":    40,
			"panama_canal":   200,
			"suez_canal":     300,
		},
	}
}

// LoadTables reads table overrides from a YAML file and merges them over the
// defaults. Only tables present in the file are replaced.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "scorer: read tables %s", path)
	}

	var override Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "scorer: parse tables")
	}

	t := DefaultTables()
	if len(override.SourceWeights) > 0 {
		t.SourceWeights = override.SourceWeights
	}
	if override.DefaultSourceWeight > 0 {
		t.DefaultSourceWeight = override.DefaultSourceWeight
	}
	if len(override.SupplyChainKeywords) > 0 {
		t.SupplyChainKeywords = override.SupplyChainKeywords
	}
	if len(override.CriticalIndicators) > 0 {
		t.CriticalIndicators = override.CriticalIndicators
	}
	if len(override.WarningIndicators) > 0 {
		t.WarningIndicators = override.WarningIndicators
	}
	if len(override.WatchIndicators) > 0 {
		t.WatchIndicators = override.WatchIndicators
	}
	if len(override.Tier1Hubs) > 0 {
		t.Tier1Hubs = override.Tier1Hubs
	}
	if len(override.MajorRegions) > 0 {
		t.MajorRegions = override.MajorRegions
	}
	if len(override.StrategicLocationKeywords) > 0 {
		t.StrategicLocationKeywords = override.StrategicLocationKeywords
	}
	if len(override.ImpactTier1) > 0 {
		t.ImpactTier1 = override.ImpactTier1
	}
	if len(override.ImpactTier2) > 0 {
		t.ImpactTier2 = override.ImpactTier2
	}
	if len(override.ImpactTier3) > 0 {
		t.ImpactTier3 = override.ImpactTier3
	}
	if len(override.SectorKeywords) > 0 {
		t.SectorKeywords = override.SectorKeywords
	}
	if len(override.RouteLocations) > 0 {
		t.RouteLocations = override.RouteLocations
	}
	if len(override.RouteBaseDailyUsdMillions) > 0 {
		t.RouteBaseDailyUsdMillions = override.RouteBaseDailyUsdMillions
	}

	return t, nil
}

// BaseSourceWeight returns the static reliability weight for a source.
func (t *Tables) BaseSourceWeight(source model.Source) float64 {
	if w, ok := t.SourceWeights[source]; ok {
		return w
	}
	return t.DefaultSourceWeight
}
