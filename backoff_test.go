package queuectl_test

import (
	"testing"
	"time"

	"github.com/romanqed/queuectl"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		attempts   int
		maxRetries int
		base       int
		dead       bool
		delay      time.Duration
	}{
		{"first failure", 1, 3, 2, false, 2 * time.Second},
		{"second failure", 2, 3, 2, false, 4 * time.Second},
		{"third failure", 3, 3, 2, false, 8 * time.Second},
		{"exhausted", 4, 3, 2, true, 0},
		{"no retries", 1, 0, 2, true, 0},
		{"base one", 2, 5, 1, false, time.Second},
		{"base three", 3, 5, 3, false, 27 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := queuectl.Decide(tt.attempts, tt.maxRetries, tt.base)
			if decision.Dead != tt.dead {
				t.Fatalf("dead = %v, want %v", decision.Dead, tt.dead)
			}
			if decision.Delay != tt.delay {
				t.Fatalf("delay = %v, want %v", decision.Delay, tt.delay)
			}
		})
	}
}
