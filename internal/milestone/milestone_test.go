package milestone

import (
	"errors"
	"testing"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) Now() int64 { return c.now }

func TestBeforeFlipsOnce(t *testing.T) {
	c := &fakeClock{now: 5000}
	s := NewSchedule(c)
	if err := s.Register(Default()); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, name := range s.Names() {
		off, _ := s.Offset(name)
		flips := 0
		last := true
		for elapsed := int64(0); elapsed <= 5000; elapsed++ {
			c.now = 5000 + elapsed
			got, err := s.Before(name)
			if err != nil {
				t.Fatalf("before %s: %v", name, err)
			}
			if got != last {
				flips++
				if got {
					t.Fatalf("%s reverted to true at %dms", name, elapsed)
				}
				if elapsed != off {
					t.Errorf("%s flipped at %dms, expected %dms", name, elapsed, off)
				}
			}
			last = got
		}
		if flips != 1 {
			t.Errorf("%s: expected exactly 1 transition, got %d", name, flips)
		}
	}
}

func TestUnknownMilestone(t *testing.T) {
	s := NewSchedule(&fakeClock{})
	s.Register(Default())

	_, err := s.Before("feedback_on")
	if !errors.Is(err, ErrUnknownMilestone) {
		t.Errorf("expected ErrUnknownMilestone, got %v", err)
	}
	if _, err := s.Offset("feedback_on"); !errors.Is(err, ErrUnknownMilestone) {
		t.Errorf("expected ErrUnknownMilestone from Offset, got %v", err)
	}
}

func TestRegisterReplacesSchedule(t *testing.T) {
	c := &fakeClock{now: 100}
	s := NewSchedule(c)
	s.Register(Default())

	c.now = 900
	if err := s.Register([]Milestone{{"probe", 50}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if s.Anchor() != 900 {
		t.Errorf("expected anchor 900, got %d", s.Anchor())
	}
	if _, err := s.Before(CueOn); !errors.Is(err, ErrUnknownMilestone) {
		t.Errorf("expected old milestones to be dropped, got %v", err)
	}
	c.now = 949
	if ok, _ := s.Before("probe"); !ok {
		t.Error("expected probe still ahead at 49ms")
	}
}

func TestRegisterRejectsBadSchedules(t *testing.T) {
	tests := []struct {
		name string
		ms   []Milestone
	}{
		{"not increasing", []Milestone{{"a", 100}, {"b", 100}}},
		{"decreasing", []Milestone{{"a", 200}, {"b", 100}}},
		{"negative", []Milestone{{"a", -1}}},
		{"duplicate", []Milestone{{"a", 1}, {"a", 2}}},
		{"empty name", []Milestone{{"", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSchedule(&fakeClock{})
			if err := s.Register(tt.ms); err == nil {
				t.Error("expected error")
			}
		})
	}
}
