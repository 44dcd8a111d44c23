package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageSpec(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantLimit int
		wantPage  int
		wantErr   error
	}{
		{
			name:      "defaults when no params",
			url:       "/leaderboard",
			wantLimit: 25,
			wantPage:  1,
		},
		{
			name:      "explicit limit and page",
			url:       "/leaderboard?limit=10&page=3",
			wantLimit: 10,
			wantPage:  3,
		},
		{
			name:      "limit capped at maximum",
			url:       "/leaderboard?limit=5000",
			wantLimit: 100,
			wantPage:  1,
		},
		{
			name:    "zero limit rejected",
			url:     "/leaderboard?limit=0",
			wantErr: errInvalidLimit,
		},
		{
			name:    "negative limit rejected",
			url:     "/leaderboard?limit=-5",
			wantErr: errInvalidLimit,
		},
		{
			name:    "non-numeric limit rejected",
			url:     "/leaderboard?limit=abc",
			wantErr: errInvalidLimit,
		},
		{
			name:    "zero page rejected",
			url:     "/leaderboard?page=0",
			wantErr: errInvalidPage,
		},
		{
			name:    "non-numeric page rejected",
			url:     "/leaderboard?page=two",
			wantErr: errInvalidPage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			spec, err := parsePageSpec(r)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, spec.Limit)
			assert.Equal(t, tt.wantPage, spec.Page)
		})
	}
}
