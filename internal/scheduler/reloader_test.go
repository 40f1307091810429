package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(ctx context.Context) error {
	l.calls.Add(1)
	return l.err
}

type reloadLog struct {
	errs []error
}

func (r *reloadLog) RecordReload(err error) { r.errs = append(r.errs, err) }

func TestNewReloader_RejectsBadSpec(t *testing.T) {
	_, err := NewReloader("whenever", &countingLoader{}, nil)
	assert.Error(t, err)
}

func TestReload(t *testing.T) {
	loader := &countingLoader{err: errors.New("bucket missing")}
	log := &reloadLog{}
	r, err := NewReloader("@every 1h", loader, log)
	require.NoError(t, err)

	r.Reload()
	assert.Equal(t, int32(1), loader.calls.Load())
	require.Len(t, log.errs, 1)
	assert.EqualError(t, log.errs[0], "bucket missing")
}

func TestReloader_RunsOnSchedule(t *testing.T) {
	loader := &countingLoader{}
	r, err := NewReloader("@every 1s", loader, nil)
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return loader.calls.Load() >= 1
	}, 3*time.Second, 50*time.Millisecond)
}
