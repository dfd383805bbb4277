package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/coreman2200/wordclock/internal/palette"
)

// Keys lists the names accepted by Apply.
func Keys() []string {
	out := make([]string, 0, len(setters))
	for k := range setters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var setters = map[string]func(s *Store, v string) error{
	"language": func(s *Store, v string) error {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return err
		}
		s.SetLanguage(uint8(n))
		return nil
	},
	"use_ldr": boolSetter((*Store).UseLdr, (*Store).ToggleUseLdr),
	"brightness": func(s *Store, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return s.SetBrightness(n)
	},
	"color": func(s *Store, v string) error {
		if i, ok := palette.Index(v); ok {
			return s.SetColor(i)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q", palette.ErrInvalidColorIndex, v)
		}
		return s.SetColor(n)
	},
	"transition": func(s *Store, v string) error {
		t, err := ParseTransition(v)
		if err != nil {
			return err
		}
		return s.SetTransition(t)
	},
	"timeout": func(s *Store, v string) error {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return err
		}
		s.SetTimeout(uint8(n))
		return nil
	},
	"es_ist":         boolSetter((*Store).EsIst, (*Store).ToggleEsIst),
	"alarm1":         boolSetter((*Store).Alarm1, (*Store).ToggleAlarm1),
	"alarm2":         boolSetter((*Store).Alarm2, (*Store).ToggleAlarm2),
	"alarm_time1":    timeSetter((*Store).SetAlarmTime1),
	"alarm_time2":    timeSetter((*Store).SetAlarmTime2),
	"night_off_time": timeSetter((*Store).SetNightOffTime),
	"night_on_time":  timeSetter((*Store).SetNightOnTime),
}

// Apply sets one field from its text form. Times are given as HH:MM and
// stored as seconds after midnight of the epoch day.
func (s *Store) Apply(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := set(s, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func boolSetter(get func(*Store) bool, toggle func(*Store)) func(*Store, string) error {
	return func(s *Store, v string) error {
		want, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		if get(s) != want {
			toggle(s)
		}
		return nil
	}
}

func timeSetter(set func(*Store, time.Time)) func(*Store, string) error {
	return func(s *Store, v string) error {
		t, err := ParseClock(v)
		if err != nil {
			return err
		}
		set(s, t)
		return nil
	}
}

// ParseClock turns HH:MM into a time on 1970-01-01 UTC.
func ParseClock(v string) (time.Time, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return time.Time{}, err
	}
	return unix(int64(t.Hour()*3600 + t.Minute()*60)), nil
}
