package discord

import (
	"context"

	"github.com/assist-by/shark/internal/notification"
)

// SendTrade는 거래 알림을 거래 채널로 전송합니다
func (c *Client) SendTrade(ctx context.Context, info notification.TradeInfo) error {
	return c.sendToWebhook(ctx, c.tradeWebhook, tradePayload(info))
}

// SendError는 에러 알림을 에러 채널로 전송합니다
func (c *Client) SendError(ctx context.Context, err error) error {
	return c.sendToWebhook(ctx, c.errorWebhook, errorPayload(err, c.now()))
}

// SendInfo는 시작/종료/한도 같은 안내를 정보 채널로 전송합니다
func (c *Client) SendInfo(ctx context.Context, message string) error {
	return c.sendToWebhook(ctx, c.infoWebhook, infoPayload(message, c.now()))
}
