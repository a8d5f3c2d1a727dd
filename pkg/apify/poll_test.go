package apify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts a sequence of run statuses for poll tests.
type fakeClient struct {
	statuses []string
	calls    int
	items    []json.RawMessage
}

func (f *fakeClient) RunActorSync(context.Context, string, any) ([]json.RawMessage, error) {
	return nil, nil
}

func (f *fakeClient) StartActor(context.Context, string, any) (*Run, error) {
	return &Run{ID: "run-1", Status: "RUNNING"}, nil
}

func (f *fakeClient) GetRun(context.Context, string) (*Run, error) {
	status := f.statuses[min(f.calls, len(f.statuses)-1)]
	f.calls++
	return &Run{ID: "run-1", Status: status, DefaultDatasetID: "ds-1"}, nil
}

func (f *fakeClient) GetDatasetItems(context.Context, string) ([]json.RawMessage, error) {
	return f.items, nil
}

func fastPoll() PollConfig {
	return PollConfig{InitialWait: time.Millisecond, Interval: time.Millisecond, Timeout: time.Second}
}

func TestWaitForRunSucceeds(t *testing.T) {
	client := &fakeClient{
		statuses: []string{"RUNNING", "RUNNING", RunStatusSucceeded},
		items:    []json.RawMessage{json.RawMessage(`{"fullName":"Jane"}`)},
	}

	items, err := WaitForRun(context.Background(), client, "run-1", fastPoll())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, client.calls)
}

func TestWaitForRunAborted(t *testing.T) {
	client := &fakeClient{statuses: []string{"RUNNING", RunStatusAborted}}

	_, err := WaitForRun(context.Background(), client, "run-1", fastPoll())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ABORTED")
}

func TestWaitForRunTimeout(t *testing.T) {
	client := &fakeClient{statuses: []string{"RUNNING"}}

	cfg := PollConfig{InitialWait: 0, Interval: time.Millisecond, Timeout: 10 * time.Millisecond}
	_, err := WaitForRun(context.Background(), client, "run-1", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still RUNNING")
}

func TestWaitForRunCancelled(t *testing.T) {
	client := &fakeClient{statuses: []string{"RUNNING"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := PollConfig{InitialWait: time.Hour, Interval: time.Hour, Timeout: 2 * time.Hour}
	_, err := WaitForRun(ctx, client, "run-1", cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
