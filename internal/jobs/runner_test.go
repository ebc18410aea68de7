package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubMaintainer struct {
	rebuilds   atomic.Int32
	expiries   atomic.Int32
	expireErr  error
	rebuildErr error
}

func (s *stubMaintainer) RebuildIndex(context.Context) (int, error) {
	s.rebuilds.Add(1)
	return 12, s.rebuildErr
}

func (s *stubMaintainer) ExpireContracts(context.Context) (int64, error) {
	s.expiries.Add(1)
	return 1, s.expireErr
}

func TestNewRunnerRejectsBadSpecs(t *testing.T) {
	_, err := NewRunner(&stubMaintainer{}, Config{RebuildSpec: "not a spec", ExpirySpec: "5 0 * * *"}, zerolog.Nop())
	require.Error(t, err)

	_, err = NewRunner(&stubMaintainer{}, Config{RebuildSpec: "*/30 * * * *", ExpirySpec: "61 * * * *"}, zerolog.Nop())
	require.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	stub := &stubMaintainer{}
	runner, err := NewRunner(stub, Config{RebuildSpec: "*/30 * * * *", ExpirySpec: "5 0 * * *"}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, runner.RunOnce(context.Background()))
	assert.Equal(t, int32(1), stub.expiries.Load())
	assert.Equal(t, int32(1), stub.rebuilds.Load())

	stub.expireErr = errors.New("db down")
	err = runner.RunOnce(context.Background())
	require.ErrorIs(t, err, stub.expireErr)
	assert.Equal(t, int32(1), stub.rebuilds.Load())
}

func TestScheduledRunsAndStop(t *testing.T) {
	stub := &stubMaintainer{}
	runner, err := NewRunner(stub, Config{
		RebuildSpec: "@every 1s",
		ExpirySpec:  "@every 1s",
		Location:    time.UTC,
	}, zerolog.Nop())
	require.NoError(t, err)

	runner.Start()
	require.Eventually(t, func() bool {
		return stub.rebuilds.Load() > 0 && stub.expiries.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, runner.Stop(ctx))
}

func TestFailingJobIsLogged(t *testing.T) {
	stub := &stubMaintainer{rebuildErr: errors.New("boom")}
	runner, err := NewRunner(stub, Config{RebuildSpec: "@hourly", ExpirySpec: "@daily"}, zerolog.Nop())
	require.NoError(t, err)

	runner.job("rebuild-index", runner.rebuildIndex)()
	assert.Equal(t, int32(1), stub.rebuilds.Load())
}
