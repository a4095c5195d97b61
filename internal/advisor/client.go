package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"smart-campus/backend/config"
)

// httpClient 基于 HTTP 的排课建议客户端
// 超时由配置的 advisor.timeout 约束；失败不重试
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient 创建 HTTP 排课建议客户端
func NewHTTPClient(cfg *config.AdvisorConfig, logger *zap.Logger) Advisor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *httpClient) SuggestDistribution(ctx context.Context, class ClassContext) (*Suggestion, error) {
	body, err := json.Marshal(class)
	if err != nil {
		return nil, fmt.Errorf("序列化建议请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/suggest-distribution", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构造建议请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用建议服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 读掉响应体以便连接复用，内容只进日志
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("建议服务返回非 200 状态",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data))
		return nil, fmt.Errorf("建议服务返回状态 %d", resp.StatusCode)
	}

	var suggestion Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return nil, fmt.Errorf("解析建议响应失败: %w", err)
	}
	return &suggestion, nil
}
