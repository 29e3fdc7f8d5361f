package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/shark/internal/logger"
	"github.com/assist-by/shark/internal/notification"
)

// DefaultTimeout은 웹훅 요청 하나에 허용하는 시간입니다
const DefaultTimeout = 5 * time.Second

// Client는 Discord 웹훅 클라이언트입니다
type Client struct {
	tradeWebhook string
	errorWebhook string
	infoWebhook  string
	http         *resty.Client
	now          func() time.Time
	log          *logrus.Entry
}

var _ notification.Notifier = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 요청 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다.
// 비어 있는 웹훅 주소로 가는 알림은 전송하지 않습니다.
func NewClient(tradeWebhook, errorWebhook, infoWebhook string, opts ...ClientOption) *Client {
	c := &Client{
		tradeWebhook: tradeWebhook,
		errorWebhook: errorWebhook,
		infoWebhook:  infoWebhook,
		http:         resty.New().SetTimeout(DefaultTimeout),
		now:          time.Now,
		log:          logger.Component("discord"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendToWebhook은 웹훅으로 메시지를 전송합니다
func (c *Client) sendToWebhook(ctx context.Context, webhookURL string, msg payload) error {
	if webhookURL == "" {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(webhookURL)
	if err != nil {
		return fmt.Errorf("웹훅 요청 실패: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("웹훅 응답 에러: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
