package cmd

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCleanupGuard_Dispositions(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(p *fakeProcess)
		want      disposition
		wantErr   bool
		wantTerms int
		wantKills int
	}{
		{
			name:      "terminated",
			setup:     func(p *fakeProcess) {},
			want:      dispositionTerminated,
			wantTerms: 1,
		},
		{
			name:      "already exited",
			setup:     func(p *fakeProcess) { p.exit() },
			want:      dispositionAlreadyExited,
			wantTerms: 0,
		},
		{
			name:      "reaped between check and signal",
			setup:     func(p *fakeProcess) { p.termErr = fmt.Errorf("signal: %w", os.ErrProcessDone) },
			want:      dispositionAlreadyExited,
			wantTerms: 1,
		},
		{
			name:      "ignores SIGTERM",
			setup:     func(p *fakeProcess) { p.exitOnTerm = false },
			want:      dispositionKilled,
			wantTerms: 1,
			wantKills: 1,
		},
		{
			name:      "SIGTERM refused",
			setup:     func(p *fakeProcess) { p.termErr = errors.New("operation not permitted") },
			want:      dispositionTerminationFailed,
			wantErr:   true,
			wantTerms: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newFakeProcess()
			tc.setup(p)
			g := newCleanupGuard(p, 10*time.Millisecond)
			got, err := g.release()
			require.Equal(t, tc.want, got)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			terms, kills := p.stops()
			require.Equal(t, tc.wantTerms, terms)
			require.Equal(t, tc.wantKills, kills)
		})
	}
}

func TestCleanupGuard_SurvivesKill(t *testing.T) {
	orig := killWait
	killWait = 20 * time.Millisecond
	t.Cleanup(func() { killWait = orig })

	p := newFakeProcess()
	p.exitOnTerm = false
	p.exitOnKill = false
	got, err := newCleanupGuard(p, 10*time.Millisecond).release()
	require.Equal(t, dispositionTerminationFailed, got)
	require.ErrorContains(t, err, "still running after SIGKILL")
}

func TestCleanupGuard_ReleaseIsIdempotent(t *testing.T) {
	p := newFakeProcess()
	g := newCleanupGuard(p, time.Second)

	var wg sync.WaitGroup
	results := make([]disposition, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.release()
		}(i)
	}
	wg.Wait()
	again, err := g.release()
	require.NoError(t, err)

	for _, r := range results {
		require.Equal(t, dispositionTerminated, r)
	}
	require.Equal(t, dispositionTerminated, again)
	terms, kills := p.stops()
	require.Equal(t, 1, terms)
	require.Equal(t, 0, kills)
}

func TestCleanupGuard_SecondReleaseKeepsFirstError(t *testing.T) {
	p := newFakeProcess()
	p.termErr = errors.New("operation not permitted")
	g := newCleanupGuard(p, time.Second)

	_, first := g.release()
	_, second := g.release()
	require.Error(t, first)
	require.Equal(t, first, second)
	terms, _ := p.stops()
	require.Equal(t, 1, terms)
}
