package dedup

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Seen suppresses re-processing of redelivered events. Platform redelivery
// windows are short, so a bounded LRU preserves the at-most-once contract
// without growing for the life of the process.
type Seen struct {
	cache *lru.Cache[string, struct{}]
}

func New(capacity int) (*Seen, error) {
	c, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}
	return &Seen{cache: c}, nil
}

// ShouldProcess returns true exactly once per event id: on first sight the
// id is recorded and true is returned; every later sight returns false.
// The check-and-record is atomic relative to concurrent deliveries of the
// same id.
func (s *Seen) ShouldProcess(eventID string) bool {
	existed, _ := s.cache.ContainsOrAdd(eventID, struct{}{})
	return !existed
}

// Len reports how many ids are currently tracked.
func (s *Seen) Len() int {
	return s.cache.Len()
}
