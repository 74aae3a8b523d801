package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitPublisher はデフォルトexchange経由でイベント種別ごとのキューへ送る
type RabbitPublisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher は接続してイベントごとのキューを宣言する
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, ch, err := dialRabbit(url)
	if err != nil {
		return nil, err
	}
	return &RabbitPublisher{url: url, conn: conn, ch: ch}, nil
}

func dialRabbit(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	// 宣言しておけばpublishがキュー不在で落ちない
	for _, q := range []string{OrderPlacedType, OrderStatusChangedType} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("declare %s: %w", q, err)
		}
	}
	return conn, ch, nil
}

// channel は切れていれば張り直したチャネルを返す
func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn != nil && !p.conn.IsClosed() {
		_ = p.conn.Close()
	}
	conn, ch, err := dialRabbit(p.url)
	if err != nil {
		return nil, fmt.Errorf("reconnect: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.Key,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// IsClosedに反映される前に切れた場合は一度だけ張り直す
	for attempt := 0; ; attempt++ {
		ch, err := p.channel()
		if err != nil {
			return err
		}
		err = ch.PublishWithContext(pubCtx, "", ev.Type, false, false, msg)
		if err == nil || !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return err
		}
	}
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
