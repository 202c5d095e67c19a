package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// Config 重试配置
type Config struct {
	// 最大重试次数
	MaxRetries int `json:"max_retries"`
	// 初始延迟时间
	InitialDelay time.Duration `json:"initial_delay"`
	// 最大延迟时间
	MaxDelay time.Duration `json:"max_delay"`
	// 退避因子（指数退避）
	BackoffFactor float64 `json:"backoff_factor"`
}

// DefaultConfig 返回默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Retrier 针对瞬时网络故障与5xx的HTTP重试器
type Retrier struct {
	config Config
	client *http.Client
}

// Wrap 使用重试策略包装HTTP客户端
func Wrap(client *http.Client, config Config) *Retrier {
	if client == nil {
		client = http.DefaultClient
	}
	return &Retrier{config: config, client: client}
}

// Do 执行HTTP请求，对可重试错误按指数退避重试。
// 超时（context deadline 或连接超时）不重试，直接交由调用方分类。
func (r *Retrier) Do(req *http.Request) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.backoff(attempt)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
			// 请求体在上一次尝试中已被读掉，重试前回绕
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				req.Body = body
			}
		}

		resp, err := r.client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			if lastResp != nil {
				lastResp.Body.Close()
			}
			return resp, nil
		}

		if err != nil {
			if isTimeout(err) || errors.Is(err, context.Canceled) {
				return nil, err
			}
			if !isTransient(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		// 5xx：丢弃响应体后重试
		if lastResp != nil {
			lastResp.Body.Close()
		}
		lastResp = resp
		lastErr = nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

// backoff 计算第attempt次重试前的等待时间
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	return time.Duration(delay)
}

// isTimeout 判断是否为超时类错误
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	return false
}

// isTransient 判断是否为可快速重试的瞬时网络错误
func isTransient(err error) bool {
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	msg := err.Error()
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "EOF")
}

// IsTimeoutError 供提供商对底层错误做超时分类
func IsTimeoutError(err error) bool {
	return isTimeout(err)
}
