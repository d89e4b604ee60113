package models

import "time"

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaShow  MediaType = "show"
)

type WatchStatus string

const (
	WatchNotStarted WatchStatus = "not-started"
	WatchWatching   WatchStatus = "watching"
	WatchFinished   WatchStatus = "finished"
)

const (
	MinRating = 0
	MaxRating = 10
)

type WatchlistItem struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Title      string      `json:"title"`
	Type       MediaType   `json:"type"`
	Status     WatchStatus `json:"status"`
	Notes      string      `json:"notes"`
	Genre      StringList  `json:"genre"`
	Year       *int        `json:"year,omitempty"`
	Rating     *float64    `json:"rating,omitempty"`
	PosterURL  string      `json:"poster_url,omitempty"`
	TrailerURL string      `json:"trailer_url,omitempty"`
	WatchedAt  *time.Time  `json:"watched_at,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

type WatchlistPatch struct {
	Title      *string
	Type       *MediaType
	Status     *WatchStatus
	Notes      *string
	Genre      *[]string
	Year       *int
	Rating     *float64
	PosterURL  *string
	TrailerURL *string
}

func IsValidMediaType(t MediaType) bool {
	return t == MediaMovie || t == MediaShow
}

func IsValidWatchStatus(s WatchStatus) bool {
	switch s {
	case WatchNotStarted, WatchWatching, WatchFinished:
		return true
	}
	return false
}

func IsValidRating(r float64) bool {
	return r >= MinRating && r <= MaxRating
}
