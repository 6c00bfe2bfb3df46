package models

import (
	"encoding/json"
	"time"
)

// IconSet is one cached Iconify icon collection. Payload is the raw JSON
// served by the Iconify API, passed through to the frontend untouched.
type IconSet struct {
	Prefix    string          `json:"prefix"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
