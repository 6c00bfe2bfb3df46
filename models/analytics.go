package models

import "time"

// SiteStats is the aggregate snapshot pulled from the Umami API.
type SiteStats struct {
	Pageviews int64     `json:"pageviews"`
	Visitors  int64     `json:"visitors"`
	Visits    int64     `json:"visits"`
	Bounces   int64     `json:"bounces"`
	TotalTime int64     `json:"totaltime"`
	StartAt   time.Time `json:"startAt"`
	EndAt     time.Time `json:"endAt"`
}

// PageviewPoint is one bucket of the Umami pageviews series.
type PageviewPoint struct {
	Timestamp string `json:"x"`
	Count     int64  `json:"y"`
}

// AnalyticsSnapshot is a persisted stats capture, used to serve stale data
// when the upstream API is unreachable or rate limited.
type AnalyticsSnapshot struct {
	ID         int64     `json:"id"`
	CapturedAt time.Time `json:"capturedAt"`
	Stats      SiteStats `json:"stats"`
}
