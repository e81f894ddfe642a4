package server

import (
	"context"
	"errors"
	"testing"
	"time"

	applogger "GigCredit/pkg/logger"
	"GigCredit/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShutsDownOnContextCancel(t *testing.T) {
	q := queue.NewLocalQueue(applogger.NewNop(), &queue.QueueConfig{Workers: 1})
	var order []string

	app := New(nil, nil,
		WithQueue(q),
		WithCloser("first", func() error { order = append(order, "first"); return nil }),
		WithCloser("second", func() error { order = append(order, "second"); return nil }),
		WithShutdownTimeout(time.Second),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, []string{"second", "first"}, order)
	assert.Equal(t, []string{"second", "first"}, app.Resources())
}

func TestShutdownJoinsCloserErrors(t *testing.T) {
	boom := errors.New("boom")
	app := New(nil, nil,
		WithCloser("mongo", func() error { return boom }),
		WithCloser("redis", func() error { return nil }),
	)

	err := app.shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "mongo")
}

func TestWithConsumerIgnoresNil(t *testing.T) {
	app := New(nil, nil, WithConsumer(nil))
	assert.Nil(t, app.consumer)
	assert.Empty(t, app.handlers)
}
