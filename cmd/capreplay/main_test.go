package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameRange(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		wantStart uint32
		wantEnd   uint32
		wantErr   bool
	}{
		{name: "valid range", arg: "10-110", wantStart: 10, wantEnd: 110},
		{name: "zero start", arg: "0-50", wantStart: 0, wantEnd: 50},
		{name: "missing separator", arg: "10", wantErr: true},
		{name: "too many parts", arg: "10-20-30", wantErr: true},
		{name: "non numeric start", arg: "a-20", wantErr: true},
		{name: "non numeric end", arg: "10-b", wantErr: true},
		{name: "empty", arg: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseFrameRange(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
