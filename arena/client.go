package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL 竞技场服务的默认根地址
const DefaultBaseURL = "http://10.69.4.1:3001"

// Client 带鉴权的竞技场 HTTP 客户端。
// 每个操作恰好一次请求：不重试、不缓存、不排队，也不检查 HTTP 状态码，
// 只要响应体是合法 JSON 就原样返回，应用层错误由调用方自行从文档中判断。
// 构造后字段不可变，可被多个 goroutine 并发使用。
type Client struct {
	teamName   string
	secret     string
	baseURL    string
	httpClient *http.Client
}

// Option 构造选项
type Option func(*Client)

// WithBaseURL 覆盖服务根地址（末尾的 / 会被去掉）
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient 替换底层 http.Client，主要用于测试注入传输层
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New 创建客户端。默认 http.Client 不设超时，截止时间由调用方通过 ctx 控制
func New(teamName, secret string, opts ...Option) *Client {
	c := &Client{
		teamName:   teamName,
		secret:     secret,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TeamName 返回队伍名
func (c *Client) TeamName() string { return c.teamName }

// BaseURL 返回服务根地址
func (c *Client) BaseURL() string { return c.baseURL }

type registerRequest struct {
	TeamName string `json:"teamName"`
	Role     string `json:"role"`
}

type moveRequest struct {
	Direction Direction `json:"direction"`
}

type toggleRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Register POST /api/auth/register，以给定角色注册本队
func (c *Client) Register(ctx context.Context, role string) (Document, error) {
	return c.do(ctx, "register", http.MethodPost, "/api/auth/register",
		registerRequest{TeamName: c.teamName, Role: role})
}

// State GET /api/team/{teamName}/state
func (c *Client) State(ctx context.Context) (Document, error) {
	return c.do(ctx, "state", http.MethodGet, c.teamPath("state"), nil)
}

// Move POST /api/team/{teamName}/move
func (c *Client) Move(ctx context.Context, dir Direction) (Document, error) {
	return c.do(ctx, "move", http.MethodPost, c.teamPath("move"), moveRequest{Direction: dir})
}

// ToggleBlock POST /api/team/{teamName}/toggle，坐标不做边界检查
func (c *Client) ToggleBlock(ctx context.Context, x, y int) (Document, error) {
	return c.do(ctx, "toggle", http.MethodPost, c.teamPath("toggle"), toggleRequest{X: x, Y: y})
}

func (c *Client) teamPath(action string) string {
	return "/api/team/" + url.PathEscape(c.teamName) + "/" + action
}

// do 执行一次请求：body 为 nil 时不带请求体和 Content-Type
func (c *Client) do(ctx context.Context, op, method, path string, body any) (Document, error) {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Document{}, &TransportError{Op: op, Method: method, URL: target, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Document{}, &TransportError{Op: op, Method: method, URL: target, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Document{}, &TransportError{Op: op, Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, &TransportError{Op: op, Method: method, URL: target, Err: err}
	}

	v, err := decodeDocument(raw)
	if err != nil {
		return Document{}, &DecodeError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return Document{Value: v}, nil
}

// decodeDocument 解析恰好一个 JSON 值；数字保留为 json.Number，转发时不丢精度
func decodeDocument(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}
