package domain

import "time"

// ListingRecord is the unit of the feed. Created once at acceptance,
// never mutated afterwards.
type ListingRecord struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	DatePosted string    `json:"date_posted"`
	URL        string    `json:"job_url"`
	SourceSite string    `json:"site"`
	FoundAt    time.Time `json:"found_at"`
	Analysis   Analysis  `json:"analysis"`
}

// Analysis is the policy evaluator's verdict. Only suitable records
// carry one into the feed.
type Analysis struct {
	Suitable     bool   `json:"is_suitable"`
	Score        int    `json:"match_score"`
	Reason       string `json:"reason,omitempty"`
	ShareMessage string `json:"share_message,omitempty"`
}

// RawListing is what the acquisition side hands over: loosely typed,
// possibly missing fields. Normalization turns it into a ListingRecord.
type RawListing struct {
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	DatePosted  string
	SourceSite  string
}
