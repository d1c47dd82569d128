package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyPlace is returned for a query message that names no place.
var ErrEmptyPlace = errors.New("empty place query")

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// PlaceQuery is the JSON form of a query message. Plain-text messages carry
// the place name alone.
type PlaceQuery struct {
	Place string `json:"place"`
}

// ParsePlaceQuery extracts the requested place name from a query message,
// accepting either a bare name or a JSON object with a "place" field.
func ParsePlaceQuery(raw RawEvent) (string, error) {
	value := bytes.TrimSpace(raw.Value)
	place := string(value)
	if bytes.HasPrefix(value, []byte("{")) {
		var q PlaceQuery
		if err := json.Unmarshal(value, &q); err != nil {
			return "", fmt.Errorf("parse place query: %w", err)
		}
		place = q.Place
	}
	place = strings.TrimSpace(place)
	if place == "" {
		return "", ErrEmptyPlace
	}
	return place, nil
}
