package util

import (
	"testing"
	"time"
)

func TestSkipThrottler(t *testing.T) {
	t.Parallel()
	tt := NewSkipThrottler(time.Hour)
	if !tt.Ok() {
		t.Fatalf("first call skipped")
	}
	for range 3 {
		if tt.Ok() {
			t.Fatalf("call within interval allowed")
		}
	}

	tt = NewSkipThrottler(0)
	for range 3 {
		if !tt.Ok() {
			t.Fatalf("zero interval skipped")
		}
	}
}
