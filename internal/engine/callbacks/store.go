package callbacks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Registration is where and how future events for one order get delivered.
// Entries are volatile; a restart loses them.
type Registration struct {
	WebhookURL        string                 `json:"webhookUrl,omitempty"`
	SuccessURL        string                 `json:"successUrl,omitempty"`
	FailureURL        string                 `json:"failureUrl,omitempty"`
	Secret            string                 `json:"secret,omitempty"`
	IncludeRawPayload bool                   `json:"includeRawPayload,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`

	registeredAt time.Time
}

// Store keeps callback registrations keyed by canonical order code. Entries
// are consumed on successful-payment delivery, retained across failures, and
// evicted once older than the TTL so never-settled orders cannot accumulate
// forever.
type Store struct {
	entries sync.Map // map[string]*Registration
	ttl     time.Duration
	size    atomic.Int64
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now}
}

// CanonicalCode normalizes an order code to its decimal string form so the
// order-creation path and the webhook path always agree on the key.
func CanonicalCode(code interface{}) string {
	switch v := code.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *Store) Register(orderCode interface{}, reg *Registration) {
	key := CanonicalCode(orderCode)
	reg.registeredAt = s.now()
	if _, loaded := s.entries.Swap(key, reg); !loaded {
		s.addSize(1)
	}
	log.Debug().Str("order_code", key).Msg("callback registered")
}

func (s *Store) Get(orderCode interface{}) (*Registration, bool) {
	key := CanonicalCode(orderCode)
	val, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}

	reg := val.(*Registration)
	if s.expired(reg) {
		s.evict(key, reg)
		return nil, false
	}
	return reg, true
}

func (s *Store) Remove(orderCode interface{}) {
	key := CanonicalCode(orderCode)
	if _, loaded := s.entries.LoadAndDelete(key); loaded {
		s.addSize(-1)
	}
}

func (s *Store) Len() int {
	return int(s.size.Load())
}

// Sweep removes every expired registration and returns how many were evicted.
func (s *Store) Sweep() int {
	evicted := 0
	s.entries.Range(func(key, val interface{}) bool {
		reg := val.(*Registration)
		if s.expired(reg) && s.evict(key.(string), reg) {
			evicted++
		}
		return true
	})
	return evicted
}

// StartSweeper runs Sweep on the given interval until stop is closed.
func (s *Store) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Info().Int("evicted", n).Msg("swept expired callback registrations")
				}
			case <-stop:
				return
			}
		}
	}()
}

func (s *Store) expired(reg *Registration) bool {
	return s.ttl > 0 && s.now().Sub(reg.registeredAt) > s.ttl
}

// evict deletes only the observed registration, so a concurrent re-register
// for the same order code is never thrown away.
func (s *Store) evict(key string, reg *Registration) bool {
	if !s.entries.CompareAndDelete(key, reg) {
		return false
	}
	s.addSize(-1)
	log.Info().Str("order_code", key).
		Dur("age", s.now().Sub(reg.registeredAt)).
		Msg("evicted expired callback registration")
	return true
}

func (s *Store) addSize(delta int64) {
	s.size.Add(delta)
}
