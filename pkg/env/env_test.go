package env

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: Local},
		{in: "PROD", want: Prod},
		{in: " dev ", want: Dev},
		{in: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_SlogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelInfo, Prod.SlogLevel())
	assert.Equal(t, slog.LevelDebug, Local.SlogLevel())
	assert.False(t, Prod.IsDevelopment())
	assert.True(t, Dev.IsDevelopment())
}
