package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestRaceLeavesNoGoroutines checks that the abandoned side of the timeout race exits once its context is released.
func TestRaceLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	timer := make(chan time.Time, 1)
	timer <- time.Now()
	g, _ := newTestGenerator(t, &fakeCompleter{block: true}, WithAfterFunc(func(time.Duration) <-chan time.Time {
		return timer
	}))

	_, err := g.Generate(context.Background(), testReq)
	require.Error(t, err)
}
