package fetcher

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/disruption-cli/internal/model"
)

// Feed pulls one provider and maps its payload to observations. Mapping is
// lenient: malformed records become observations with missing fields and the
// validator decides their fate.
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Observation, error)
}

// FetchAll runs every feed sequentially and pools the observations. A failed
// feed is logged and skipped; one dead provider must not starve the rest.
func FetchAll(ctx context.Context, feeds []Feed) []model.Observation {
	var out []model.Observation
	for _, feed := range feeds {
		observations, err := feed.Fetch(ctx)
		if err != nil {
			zap.L().Error("fetcher: feed failed",
				zap.String("feed", feed.Name()),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("fetcher: feed fetched",
			zap.String("feed", feed.Name()),
			zap.Int("observations", len(observations)),
		)
		out = append(out, observations...)
	}
	return out
}

// WeatherFeed reads active alerts from an NWS-style endpoint.
type WeatherFeed struct {
	Fetcher Fetcher
	URL     string
}

func (f *WeatherFeed) Name() string { return "weather" }

type nwsAlertResponse struct {
	Features []struct {
		Properties struct {
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			AreaDesc    string `json:"areaDesc"`
			Severity    string `json:"severity"`
			Sent        string `json:"sent"`
		} `json:"properties"`
	} `json:"features"`
}

func (f *WeatherFeed) Fetch(ctx context.Context) ([]model.Observation, error) {
	var payload nwsAlertResponse
	if err := GetJSON(ctx, f.Fetcher, f.URL, &payload); err != nil {
		return nil, err
	}

	observations := make([]model.Observation, 0, len(payload.Features))
	for _, feat := range payload.Features {
		p := feat.Properties
		title := p.Headline
		if title == "" {
			title = p.Event
		}
		observations = append(observations, model.Observation{
			Source:      model.SourceWeather,
			EventType:   "weather",
			Title:       title,
			Description: p.Description,
			Location:    p.AreaDesc,
			Severity:    weatherSeverity(p.Severity),
			Timestamp:   parseTime(p.Sent),
		})
	}
	return observations, nil
}

// weatherSeverity maps the NWS severity vocabulary onto ours.
func weatherSeverity(s string) model.Severity {
	switch strings.ToLower(s) {
	case "extreme":
		return model.SeverityCritical
	case "severe":
		return model.SeverityWarning
	case "moderate":
		return model.SeverityWatch
	case "minor":
		return model.SeverityInfo
	default:
		return model.SeverityWatch
	}
}

// QuakeFeed reads a USGS-style GeoJSON earthquake catalog.
type QuakeFeed struct {
	Fetcher Fetcher
	URL     string
}

func (f *QuakeFeed) Name() string { return "earthquake" }

type usgsResponse struct {
	Features []struct {
		Properties struct {
			Mag   float64 `json:"mag"`
			Place string  `json:"place"`
			Title string  `json:"title"`
			Time  int64   `json:"time"`
			URL   string  `json:"url"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (f *QuakeFeed) Fetch(ctx context.Context) ([]model.Observation, error) {
	var payload usgsResponse
	if err := GetJSON(ctx, f.Fetcher, f.URL, &payload); err != nil {
		return nil, err
	}

	observations := make([]model.Observation, 0, len(payload.Features))
	for _, feat := range payload.Features {
		p := feat.Properties
		obs := model.Observation{
			Source:      model.SourceEarthquake,
			EventType:   "earthquake",
			Title:       p.Title,
			Description: "Earthquake reported " + p.Place,
			Location:    p.Place,
			Severity:    quakeSeverity(p.Mag),
			Magnitude:   p.Mag,
			URL:         p.URL,
		}
		if p.Time > 0 {
			ts := time.UnixMilli(p.Time).UTC()
			obs.Timestamp = &ts
		}
		// GeoJSON order is longitude, latitude, depth.
		if len(feat.Geometry.Coordinates) >= 2 {
			lon, lat := feat.Geometry.Coordinates[0], feat.Geometry.Coordinates[1]
			obs.Latitude = &lat
			obs.Longitude = &lon
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

func quakeSeverity(mag float64) model.Severity {
	switch {
	case mag >= 7.0:
		return model.SeverityCritical
	case mag >= 6.0:
		return model.SeverityWarning
	case mag >= 5.0:
		return model.SeverityWatch
	default:
		return model.SeverityInfo
	}
}

// NewsFeed reads a NewsAPI-style article listing.
type NewsFeed struct {
	Fetcher Fetcher
	URL     string
}

func (f *NewsFeed) Name() string { return "news" }

type newsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (f *NewsFeed) Fetch(ctx context.Context) ([]model.Observation, error) {
	var payload newsResponse
	if err := GetJSON(ctx, f.Fetcher, f.URL, &payload); err != nil {
		return nil, err
	}

	observations := make([]model.Observation, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		observations = append(observations, model.Observation{
			Source:      model.SourceNews,
			EventType:   "news",
			Title:       article.Title,
			Description: article.Description,
			Severity:    model.SeverityWatch,
			Timestamp:   parseTime(article.PublishedAt),
			URL:         article.URL,
		})
	}
	return observations, nil
}

// TransportFeed reads the internal transport incident status endpoint.
type TransportFeed struct {
	Fetcher Fetcher
	URL     string
}

func (f *TransportFeed) Name() string { return "transport" }

type transportResponse struct {
	Incidents []struct {
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Severity    string `json:"severity"`
		ReportedAt  string `json:"reported_at"`
	} `json:"incidents"`
}

func (f *TransportFeed) Fetch(ctx context.Context) ([]model.Observation, error) {
	var payload transportResponse
	if err := GetJSON(ctx, f.Fetcher, f.URL, &payload); err != nil {
		return nil, err
	}

	observations := make([]model.Observation, 0, len(payload.Incidents))
	for _, inc := range payload.Incidents {
		eventType := inc.Type
		if eventType == "" {
			eventType = "transport"
		}
		severity := model.Severity(strings.ToLower(inc.Severity))
		if !severity.IsValid() {
			severity = model.SeverityWatch
		}
		observations = append(observations, model.Observation{
			Source:      model.SourceTransport,
			EventType:   eventType,
			Title:       inc.Title,
			Description: inc.Description,
			Location:    inc.Location,
			Severity:    severity,
			Timestamp:   parseTime(inc.ReportedAt),
		})
	}
	return observations, nil
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	ts = ts.UTC()
	return &ts
}
