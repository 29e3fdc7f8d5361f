package upbit

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/assist-by/shark/internal/exchange"
	"github.com/assist-by/shark/internal/logger"
)

const defaultBaseURL = "https://api.upbit.com"

// Client는 업비트 REST API 클라이언트를 구현합니다
type Client struct {
	accessKey string
	secretKey string
	http      *resty.Client
	limiter   *rate.Limiter
	log       *logrus.Entry
}

var _ exchange.Exchange = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 요청 단위 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithRateLimit은 초당 요청 수를 제한합니다
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	}
}

// NewClient는 새로운 업비트 API 클라이언트를 생성합니다
func NewClient(accessKey, secretKey string, opts ...ClientOption) *Client {
	c := &Client{
		accessKey: accessKey,
		secretKey: secretKey,
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(8), 8),
		log:     logger.Component("upbit"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasCredentials는 access/secret 키가 모두 설정되어 있는지 반환합니다
func (c *Client) HasCredentials() bool {
	return c.accessKey != "" && c.secretKey != ""
}

// APIError는 업비트가 돌려준 에러 응답입니다
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("업비트 HTTP 에러(%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("업비트 API 에러(%d, %s): %s", e.StatusCode, e.Name, e.Message)
}

// Unwrap은 주문 없음 에러를 exchange.ErrOrderNotFound로 연결합니다
func (e *APIError) Unwrap() error {
	if e.Name == "order_not_found" {
		return exchange.ErrOrderNotFound
	}
	return nil
}

// Code는 업비트 에러 이름을 반환합니다 (예: insufficient_funds_bid)
func (e *APIError) Code() string {
	return e.Name
}

// Retryable은 같은 요청을 다시 보내면 성공할 여지가 있는지 반환합니다
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(body)}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if name := parsed.Get("error.name"); name.Exists() {
			apiErr.Name = name.String()
			apiErr.Message = parsed.Get("error.message").String()
		}
	}
	return apiErr
}

// doRequest는 HTTP 요청을 실행하고 응답 본문을 반환합니다.
// GET/DELETE는 params를 쿼리로, POST는 JSON 본문으로 보냅니다.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, needSign bool) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req := c.http.R().SetContext(ctx)

	if method == http.MethodPost {
		body := make(map[string]string, len(params))
		for k := range params {
			body[k] = params.Get(k)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	} else if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	if needSign {
		token, err := c.token(params)
		if err != nil {
			return nil, err
		}
		req.SetAuthToken(token)
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("API 요청 실패: %w", err)
	}

	if resp.IsError() {
		apiErr := parseAPIError(resp.StatusCode(), resp.Body())
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   apiErr.StatusCode,
			"name":     apiErr.Name,
		}).Debug("업비트 에러 응답")
		return nil, apiErr
	}

	return resp.Body(), nil
}

// token은 요청 파라미터의 해시를 포함한 JWT를 생성합니다
func (c *Client) token(params url.Values) (string, error) {
	if !c.HasCredentials() {
		return "", exchange.ErrNoCredentials
	}

	claims := jwt.MapClaims{
		"access_key": c.accessKey,
		"nonce":      uuid.NewString(),
	}

	if len(params) > 0 {
		query, err := url.QueryUnescape(params.Encode())
		if err != nil {
			return "", fmt.Errorf("쿼리 인코딩 실패: %w", err)
		}
		sum := sha512.Sum512([]byte(query))
		claims["query_hash"] = hex.EncodeToString(sum[:])
		claims["query_hash_alg"] = "SHA512"
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secretKey))
	if err != nil {
		return "", fmt.Errorf("JWT 서명 실패: %w", err)
	}
	return signed, nil
}
