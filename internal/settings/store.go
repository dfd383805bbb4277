package settings

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/wordclock/internal/nvram"
	"github.com/coreman2200/wordclock/internal/palette"
)

// State tells where the in-memory record came from.
type State int

const (
	Defaulted State = iota
	Loaded
)

func (s State) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "defaulted"
}

// Store owns the single settings record. Setters only touch memory, Save
// commits the whole record to the medium.
type Store struct {
	mu     sync.Mutex
	medium nvram.Medium
	log    zerolog.Logger
	rec    Record
	state  State
	dirty  bool
}

// Open reads the record from m. A stale or foreign image is replaced by
// defaults in memory; only a failing medium is an error.
func Open(m nvram.Medium, log zerolog.Logger) (*Store, error) {
	s := &Store{medium: m, log: log.With().Str("component", "settings").Logger()}
	b := make([]byte, Size)
	n, err := m.ReadAt(b, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("settings: read: %w", err)
	}
	rec, err := Validate(b[:n])
	s.rec = rec
	if err != nil {
		s.state = Defaulted
		s.log.Warn().Err(err).Msg("stored settings discarded, using defaults")
		return s, nil
	}
	s.state = Loaded
	s.log.Debug().Int("version", Version).Msg("settings loaded")
	return s, nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether memory differs from what was last saved or loaded.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Record returns a snapshot of the whole record.
func (s *Store) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec
}

// Reset restores the defaults in memory. Nothing is written until Save.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = Defaults()
	s.state = Defaulted
	s.dirty = true
}

// Save writes the record at offset 0 in one call. On failure the memory
// copy stays as it is and the store remains dirty.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.rec.Marshal()
	n, err := s.medium.WriteAt(b, 0)
	if err == nil && n != len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.log.Error().Err(err).Msg("settings save failed")
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	s.dirty = false
	s.log.Info().Int("bytes", n).Msg("settings saved")
	return nil
}

func (s *Store) update(f func(r *Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.rec)
	s.dirty = true
}

func (s *Store) Language() uint8 { return s.Record().Language }

func (s *Store) SetLanguage(l uint8) { s.update(func(r *Record) { r.Language = l }) }

func (s *Store) UseLdr() bool { return s.Record().UseLdr }

func (s *Store) ToggleUseLdr() { s.update(func(r *Record) { r.UseLdr = !r.UseLdr }) }

func (s *Store) Brightness() int { return int(s.Record().Brightness) }

func (s *Store) SetBrightness(b int) error {
	if b < 0 || b > MaxBrightness {
		return fmt.Errorf("%w: %d not in [0,%d]", ErrBrightnessRange, b, MaxBrightness)
	}
	s.update(func(r *Record) { r.Brightness = int16(b) })
	return nil
}

func (s *Store) Color() int { return int(s.Record().Color) }

// SetColor selects a palette entry.
func (s *Store) SetColor(c int) error {
	if _, err := palette.Default.Lookup(c); err != nil {
		return err
	}
	s.update(func(r *Record) { r.Color = uint8(c) })
	return nil
}

func (s *Store) Transition() Transition { return s.Record().Transition }

func (s *Store) SetTransition(t Transition) error {
	if t >= TransitionCount {
		return fmt.Errorf("unknown transition %d", uint8(t))
	}
	s.update(func(r *Record) { r.Transition = t })
	return nil
}

func (s *Store) Timeout() uint8 { return s.Record().Timeout }

func (s *Store) SetTimeout(sec uint8) { s.update(func(r *Record) { r.Timeout = sec }) }

func (s *Store) EsIst() bool { return s.Record().EsIst }

func (s *Store) ToggleEsIst() { s.update(func(r *Record) { r.EsIst = !r.EsIst }) }

func (s *Store) Alarm1() bool { return s.Record().Alarm1 }

func (s *Store) ToggleAlarm1() { s.update(func(r *Record) { r.Alarm1 = !r.Alarm1 }) }

func (s *Store) AlarmTime1() time.Time { return s.Record().AlarmTime1 }

func (s *Store) SetAlarmTime1(t time.Time) { s.update(func(r *Record) { r.AlarmTime1 = stamp(t) }) }

func (s *Store) Alarm2() bool { return s.Record().Alarm2 }

func (s *Store) ToggleAlarm2() { s.update(func(r *Record) { r.Alarm2 = !r.Alarm2 }) }

func (s *Store) AlarmTime2() time.Time { return s.Record().AlarmTime2 }

func (s *Store) SetAlarmTime2(t time.Time) { s.update(func(r *Record) { r.AlarmTime2 = stamp(t) }) }

func (s *Store) NightOffTime() time.Time { return s.Record().NightOffTime }

func (s *Store) SetNightOffTime(t time.Time) { s.update(func(r *Record) { r.NightOffTime = stamp(t) }) }

func (s *Store) NightOnTime() time.Time { return s.Record().NightOnTime }

func (s *Store) SetNightOnTime(t time.Time) { s.update(func(r *Record) { r.NightOnTime = stamp(t) }) }
