package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestMock_GracefulShutdown tests that Mock device closes records channel
// when Close() is called.
func TestMock_GracefulShutdown(t *testing.T) {
	mock := NewMock(quietConfig())
	err := mock.Connect()
	assert.NoError(t, err)

	records := mock.Records()

	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range records {
			received++
			if received == 3 {
				// Got enough records, now close device
				go mock.Close()
			}
		}
	}()

	select {
	case <-done:
		// Channel closed successfully
	case <-time.After(5 * time.Second):
		t.Fatal("Records channel did not close within timeout")
	}

	assert.GreaterOrEqual(t, received, 3, "Should receive records before channel closes")
	assert.False(t, mock.IsConnected())

	_, ok := <-records
	assert.False(t, ok, "Channel should be closed")
}

// TestMock_CloseIsIdempotent tests that closing twice does not block or panic.
func TestMock_CloseIsIdempotent(t *testing.T) {
	mock := NewMock(quietConfig())
	assert.NoError(t, mock.Connect())
	assert.NoError(t, mock.Close())
	assert.NoError(t, mock.Close())
}
