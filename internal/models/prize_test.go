package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		status   PrizeStatus
		start    time.Time
		end      time.Time
		expected PrizeStatus
	}{
		{"before window", PrizeStatusUpcoming, now.Add(time.Hour), now.Add(48 * time.Hour), PrizeStatusUpcoming},
		{"inside window", PrizeStatusUpcoming, now.Add(-time.Hour), now.Add(time.Hour), PrizeStatusActive},
		{"after window", PrizeStatusActive, now.Add(-48 * time.Hour), now.Add(-time.Hour), PrizeStatusEnded},
		{"exactly at start", PrizeStatusUpcoming, now, now.Add(time.Hour), PrizeStatusActive},
		{"exactly at end", PrizeStatusActive, now.Add(-time.Hour), now, PrizeStatusEnded},
		{"drawn stays drawn", PrizeStatusDrawn, now.Add(-48 * time.Hour), now.Add(-time.Hour), PrizeStatusDrawn},
		{"cancelled stays cancelled", PrizeStatusCancelled, now.Add(-time.Hour), now.Add(time.Hour), PrizeStatusCancelled},
		{"drawing left alone", PrizeStatusDrawing, now.Add(-48 * time.Hour), now.Add(-time.Hour), PrizeStatusDrawing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Prize{Status: tc.status, StartDate: tc.start, EndDate: tc.end}
			assert.Equal(t, tc.expected, p.ComputeStatus(now))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, PrizeStatusDrawn.Terminal())
	assert.True(t, PrizeStatusCancelled.Terminal())
	assert.False(t, PrizeStatusUpcoming.Terminal())
	assert.False(t, PrizeStatusActive.Terminal())
	assert.False(t, PrizeStatusEnded.Terminal())
	assert.False(t, PrizeStatusDrawing.Terminal())
}

func TestEntriesFor(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	p := &Prize{Participants: []Participant{
		{UserID: alice, Entries: 7},
		{UserID: bob, Entries: 3},
	}}

	assert.Equal(t, int64(7), p.EntriesFor(alice))
	assert.Equal(t, int64(3), p.EntriesFor(bob))
	assert.Zero(t, p.EntriesFor(primitive.NewObjectID()))
}
