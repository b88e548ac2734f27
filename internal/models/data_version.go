package models

import "time"

type DataVersion struct {
	Version     int64     `json:"version"`
	LastUpdated time.Time `json:"lastUpdated"`
}
