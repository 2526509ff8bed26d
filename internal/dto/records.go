package dto

import "github.com/finlog-app/finlog/internal/models"

// ListFilters narrows a records listing. Zero values mean "no filter".
type ListFilters struct {
	Account  string
	DateFrom string
	DateTo   string
}

type ListRecordsResponse struct {
	Items   []models.Record `json:"items"`
	Version int64           `json:"version"`
}

type MutationResponse struct {
	OK      bool  `json:"ok"`
	Version int64 `json:"version"`
}

type BatchResponse struct {
	OK      bool  `json:"ok"`
	Count   int   `json:"count"`
	Version int64 `json:"version"`
}

// ImportReport summarizes one deduplicated batch import.
type ImportReport struct {
	Received   int `json:"received"`
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Duplicates int `json:"duplicates"`
	Added      int `json:"added"`
}
