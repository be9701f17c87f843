package main

import (
	"fmt"
	"testing"

	"github.com/matzehuels/netsmith/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeCacheSync, "stale"), 3},
		{fmt.Errorf("create: %w", errors.New(errors.ErrCodeCacheSync, "stale")), 3},
		{errors.New(errors.ErrCodeInvalidConfig, "bad"), 2},
		{errors.New(errors.ErrCodeRemoteOperation, "rejected"), 1},
		{fmt.Errorf("plain"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
