package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSender struct {
	mu    sync.Mutex
	key   string
	value []byte
	err   error
	// block 非 nil 时 Send 一直等到它被关闭
	block chan struct{}
}

func (r *recordSender) Send(_ context.Context, key string, value []byte) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key, r.value = key, value
	return r.err
}

func (r *recordSender) Key() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

func newSyncKafkaPublisher(sender Sender) *KafkaPublisher {
	p := NewKafkaPublisher(sender)
	p.async = func(fn func()) { fn() }
	return p
}

func TestKafkaPublisherEncodesEvent(t *testing.T) {
	sender := &recordSender{}
	publish(context.Background(), newSyncKafkaPublisher(sender), EventVoteCast, "post-1", map[string]any{"score": 3})

	assert.Equal(t, "post-1", sender.key)
	var got map[string]any
	require.NoError(t, json.Unmarshal(sender.value, &got))
	assert.Equal(t, EventVoteCast, got["type"])
	assert.NotEmpty(t, got["at"])
	assert.Equal(t, float64(3), got["data"].(map[string]any)["score"])
}

func TestKafkaPublisherDoesNotBlockCaller(t *testing.T) {
	sender := &recordSender{block: make(chan struct{})}
	pub := NewKafkaPublisher(sender)

	// 请求 ctx 结束后消息仍然要发出去
	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	publish(ctx, pub, EventPostCreated, "post-2", nil)
	cancel()
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(sender.block)
	assert.Eventually(t, func() bool { return sender.Key() == "post-2" }, 2*time.Second, 10*time.Millisecond)
}

func TestKafkaPublisherLogsSendFailure(t *testing.T) {
	logs := captureLog(t)
	sender := &recordSender{err: errors.New("broker unreachable")}

	publish(context.Background(), newSyncKafkaPublisher(sender), EventPostDeleted, "post-3", nil)
	assert.Contains(t, logs.String(), "[kafka] publish post.deleted key=post-3 failed: broker unreachable")
}
