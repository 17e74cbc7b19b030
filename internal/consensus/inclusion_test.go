package consensus

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicInclusion_ZeroCandidatesWaitsFullDelay(t *testing.T) {
	mock := clock.NewMock()
	di := NewDynamicInclusion(mock, nil)

	at := di.AcceptableIn(mock.Now(), 0)
	require.NotNil(t, at)
	assert.Equal(t, di.StartedAt().Add(6*time.Second), *at)
}

func TestDynamicInclusion_ManyCandidatesReadyImmediately(t *testing.T) {
	mock := clock.NewMock()
	di := NewDynamicInclusion(mock, nil)

	assert.Nil(t, di.AcceptableIn(mock.Now(), 4), "four includable candidates must clear the zero-delay threshold")
}

func TestDynamicInclusion_MonotoneInElapsedTime(t *testing.T) {
	mock := clock.NewMock()
	di := NewDynamicInclusion(mock, nil)

	require.NotNil(t, di.AcceptableIn(mock.Now(), 1))
	mock.Add(3 * time.Second)
	assert.Nil(t, di.AcceptableIn(mock.Now(), 1), "once acceptable, later instants must remain acceptable")
}

func TestDynamicInclusion_MonotoneInIncludedCount(t *testing.T) {
	mock := clock.NewMock()
	di := NewDynamicInclusion(mock, nil)
	mock.Add(1 * time.Second)

	at0 := di.AcceptableIn(mock.Now(), 0)
	at2 := di.AcceptableIn(mock.Now(), 2)
	require.NotNil(t, at0)
	require.NotNil(t, at2)
	assert.True(t, !at2.After(*at0), "more candidates must never push the deadline later")
}
