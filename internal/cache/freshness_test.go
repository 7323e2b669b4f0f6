package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Minute)
	old := now.Add(-DefaultDuration)
	txs := []models.Transaction{sampleTx("e1")}

	tests := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{
			name: "fresh with expenses",
			snap: Snapshot{Expenses: txs, LastFetched: &recent},
			want: true,
		},
		{
			name: "fresh with income only",
			snap: Snapshot{Income: txs, LastFetched: &recent},
			want: true,
		},
		{
			name: "never fetched",
			snap: Snapshot{Expenses: txs},
			want: false,
		},
		{
			name: "force refresh requested",
			snap: Snapshot{Expenses: txs, LastFetched: &recent, ShouldForceRefresh: true},
			want: false,
		},
		{
			name: "exactly at max age",
			snap: Snapshot{Expenses: txs, LastFetched: &old},
			want: false,
		},
		{
			name: "both lists empty",
			snap: Snapshot{LastFetched: &recent},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFresh(tt.snap, now, DefaultDuration))
		})
	}
}
