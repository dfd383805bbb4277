// Package settings persists the user configuration of the clock as one
// versioned binary record.
package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	Magic   = 0x2A
	Version = 16

	DefaultBrightness = 128
	MaxBrightness     = 255
)

var (
	ErrVersionMismatch = errors.New("settings version mismatch")
	ErrStorageWrite    = errors.New("settings storage write failed")
	ErrBrightnessRange = errors.New("brightness out of range")
)

type Transition uint8

const (
	TransitionNormal Transition = iota
	TransitionFade
	TransitionCount
)

func (t Transition) String() string {
	switch t {
	case TransitionNormal:
		return "normal"
	case TransitionFade:
		return "fade"
	}
	return fmt.Sprintf("transition(%d)", uint8(t))
}

// ParseTransition accepts a name or a number.
func ParseTransition(s string) (Transition, error) {
	for t := TransitionNormal; t < TransitionCount; t++ {
		if s == t.String() {
			return t, nil
		}
	}
	var n uint8
	if _, err := fmt.Sscan(s, &n); err != nil || Transition(n) >= TransitionCount {
		return 0, fmt.Errorf("unknown transition %q", s)
	}
	return Transition(n), nil
}

// Record is the persisted configuration. Field order is the storage order.
type Record struct {
	Language     uint8
	UseLdr       bool
	Brightness   int16
	Color        uint8
	Transition   Transition
	Timeout      uint8
	EsIst        bool
	Alarm1       bool
	AlarmTime1   time.Time
	Alarm2       bool
	AlarmTime2   time.Time
	NightOffTime time.Time
	NightOnTime  time.Time
}

// wire is the little endian storage image.
type wire struct {
	Magic        uint8
	Version      uint8
	Language     uint8
	UseLdr       bool
	Brightness   int16
	Color        uint8
	Transition   uint8
	Timeout      uint8
	EsIst        bool
	Alarm1       bool
	AlarmTime1   int64
	Alarm2       bool
	AlarmTime2   int64
	NightOffTime int64
	NightOnTime  int64
}

// Size is the encoded length of a record.
var Size = binary.Size(wire{})

// Defaults is the record of a fresh clock.
func Defaults() Record {
	return Record{
		Language:     0,
		UseLdr:       true,
		Brightness:   DefaultBrightness,
		Color:        0,
		Transition:   TransitionFade,
		Timeout:      3,
		EsIst:        true,
		AlarmTime1:   unix(0),
		AlarmTime2:   unix(0),
		NightOffTime: unix(3600),
		NightOnTime:  unix(18000),
	}
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Marshal encodes r with the current magic and version.
func (r Record) Marshal() []byte {
	w := wire{
		Magic:        Magic,
		Version:      Version,
		Language:     r.Language,
		UseLdr:       r.UseLdr,
		Brightness:   r.Brightness,
		Color:        r.Color,
		Transition:   uint8(r.Transition),
		Timeout:      r.Timeout,
		EsIst:        r.EsIst,
		Alarm1:       r.Alarm1,
		AlarmTime1:   r.AlarmTime1.Unix(),
		Alarm2:       r.Alarm2,
		AlarmTime2:   r.AlarmTime2.Unix(),
		NightOffTime: r.NightOffTime.Unix(),
		NightOnTime:  r.NightOnTime.Unix(),
	}
	var buf bytes.Buffer
	buf.Grow(Size)
	// writing a fixed-size struct into a bytes.Buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, &w)
	return buf.Bytes()
}

// Validate decodes b. A short image, a foreign magic or another version
// yields Defaults and ErrVersionMismatch. Fields are not range checked.
func Validate(b []byte) (Record, error) {
	if len(b) < Size {
		return Defaults(), fmt.Errorf("%w: %d bytes, want %d", ErrVersionMismatch, len(b), Size)
	}
	var w wire
	if err := binary.Read(bytes.NewReader(b[:Size]), binary.LittleEndian, &w); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrVersionMismatch, err)
	}
	if w.Magic != Magic {
		return Defaults(), fmt.Errorf("%w: magic 0x%02x, want 0x%02x", ErrVersionMismatch, w.Magic, Magic)
	}
	if w.Version != Version {
		return Defaults(), fmt.Errorf("%w: version %d, want %d", ErrVersionMismatch, w.Version, Version)
	}
	return Record{
		Language:     w.Language,
		UseLdr:       w.UseLdr,
		Brightness:   w.Brightness,
		Color:        w.Color,
		Transition:   Transition(w.Transition),
		Timeout:      w.Timeout,
		EsIst:        w.EsIst,
		Alarm1:       w.Alarm1,
		AlarmTime1:   unix(w.AlarmTime1),
		Alarm2:       w.Alarm2,
		AlarmTime2:   unix(w.AlarmTime2),
		NightOffTime: unix(w.NightOffTime),
		NightOnTime:  unix(w.NightOnTime),
	}, nil
}
