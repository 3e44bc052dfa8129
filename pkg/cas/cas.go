// Package cas 实现 CAS 2.0 serviceValidate 票据校验。
// 登录流程：前端跳转 CAS 登录页 → 携带 ticket 回调 → 后端校验 ticket → 签发 JWT。
package cas

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enib-internships/backend/config"
)

var (
	ErrTicketInvalid  = errors.New("CAS 票据无效")
	ErrCASUnavailable = errors.New("CAS 服务不可用")
)

// maxResponseSize 校验响应体大小上限
const maxResponseSize = 1 << 20

// Principal 校验成功后的用户身份
type Principal struct {
	User       string
	Attributes map[string]string
}

// Email 优先取 mail 属性
func (p *Principal) Email() string {
	for _, key := range []string{"mail", "email"} {
		if v, ok := p.Attributes[key]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Client CAS 客户端
type Client struct {
	baseURL    string
	serviceURL string
	httpClient *http.Client
}

// NewClient 创建 CAS 客户端
func NewClient(cfg *config.CASConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceURL: cfg.ServiceURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LoginURL 构造 CAS 登录跳转地址
func (c *Client) LoginURL() string {
	return c.baseURL + "/login?service=" + url.QueryEscape(c.serviceURL)
}

type serviceResponse struct {
	XMLName xml.Name     `xml:"serviceResponse"`
	Success *authSuccess `xml:"authenticationSuccess"`
	Failure *authFailure `xml:"authenticationFailure"`
}

type authSuccess struct {
	User       string `xml:"user"`
	Attributes struct {
		Items []attribute `xml:",any"`
	} `xml:"attributes"`
}

type attribute struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type authFailure struct {
	Code    string `xml:"code,attr"`
	Message string `xml:",chardata"`
}

// Validate 调用 serviceValidate 校验票据
func (c *Client) Validate(ctx context.Context, ticket string) (*Principal, error) {
	if strings.TrimSpace(ticket) == "" {
		return nil, ErrTicketInvalid
	}

	q := url.Values{}
	q.Set("service", c.serviceURL)
	q.Set("ticket", ticket)
	endpoint := c.baseURL + "/serviceValidate?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 CAS 请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCASUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrCASUnavailable, resp.StatusCode)
	}

	var body serviceResponse
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: 响应解析失败: %v", ErrCASUnavailable, err)
	}

	if body.Failure != nil || body.Success == nil || strings.TrimSpace(body.Success.User) == "" {
		return nil, ErrTicketInvalid
	}

	p := &Principal{
		User:       strings.TrimSpace(body.Success.User),
		Attributes: make(map[string]string, len(body.Success.Attributes.Items)),
	}
	for _, a := range body.Success.Attributes.Items {
		p.Attributes[a.XMLName.Local] = strings.TrimSpace(a.Value)
	}
	return p, nil
}
