package service

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const (
	EventUserSignedUp     = "user.signed_up"
	EventUserVerified     = "user.verified"
	EventCommunityCreated = "community.created"
	EventCommunityJoined  = "community.joined"
	EventPostCreated      = "post.created"
	EventPostUpdated      = "post.updated"
	EventPostDeleted      = "post.deleted"
	EventVoteCast         = "vote.cast"
)

const publishTimeout = 3 * time.Second

type Event struct {
	Type string         `json:"type"`
	Key  string         `json:"key"`
	At   time.Time      `json:"at"`
	Data map[string]any `json:"data,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Sender kafka 生产者的最小接口
type Sender interface {
	Send(ctx context.Context, key string, value []byte) error
}

// KafkaPublisher 以聚合 ID 作为消息 key，保证同一对象的事件有序
type KafkaPublisher struct {
	sender Sender
	// async 执行投递；测试里替换成同步执行
	async func(fn func())
}

func NewKafkaPublisher(sender Sender) *KafkaPublisher {
	return &KafkaPublisher{
		sender: sender,
		async:  func(fn func()) { go fn() },
	}
}

// Publish 序列化后在后台投递，请求不等待 broker 确认；投递失败只记日志
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	p.async(func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := p.sender.Send(ctx, ev.Key, payload); err != nil {
			log.Printf("[kafka] publish %s key=%s failed: %v", ev.Type, ev.Key, err)
		}
	})
	return nil
}

// LogPublisher 没配置 kafka 时只打印事件
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev Event) error {
	log.Printf("[event] type=%s key=%s data=%v", ev.Type, ev.Key, ev.Data)
	return nil
}

// publish 尽力投递，失败只记日志，不影响请求结果
func publish(ctx context.Context, p EventPublisher, typ, key string, data map[string]any) {
	if p == nil {
		return
	}
	ev := Event{Type: typ, Key: key, At: time.Now().UTC(), Data: data}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("[event] publish %s key=%s failed: %v", typ, key, err)
	}
}
