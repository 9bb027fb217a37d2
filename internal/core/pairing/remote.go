package pairing

import (
	"context"
	"fmt"
	"net/http"

	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteSource 透過 HTTP 下載配對資料
type RemoteSource struct {
	client          *resty.Client
	baseURL         string
	experimentalURL string
	profilesURL     string
}

// NewRemoteSource 創建遠端資料來源
func NewRemoteSource(cfg config.DataConfig) *RemoteSource {
	client := resty.New().
		SetTimeout(cfg.RemoteTimeout).
		SetRetryCount(cfg.RemoteRetries).
		SetHeader("Accept", "text/plain, application/json").
		SetHeader("User-Agent", "flavor-pairing")

	return &RemoteSource{
		client:          client,
		baseURL:         cfg.BasePairs,
		experimentalURL: cfg.ExperimentalPairs,
		profilesURL:     cfg.Profiles,
	}
}

// Load 實作 Source
func (s *RemoteSource) Load(ctx context.Context) (*Dataset, error) {
	base, err := s.fetch(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}

	var experimental, profiles []byte
	if s.experimentalURL != "" {
		if experimental, err = s.fetch(ctx, s.experimentalURL); err != nil {
			return nil, err
		}
	}
	if s.profilesURL != "" {
		if profiles, err = s.fetch(ctx, s.profilesURL); err != nil {
			return nil, err
		}
	}

	return parseDataset(base, experimental, profiles)
}

func (s *RemoteSource) fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(url)

	if err != nil {
		common.LogError("Failed to fetch pairing data",
			zap.Error(err),
			zap.String("url", url),
		)
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Pairing data source returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("url", url),
		)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode())
	}

	common.LogDebug("配對資料下載完成",
		zap.String("url", url),
		zap.Int("bytes", len(resp.Body())),
	)

	return resp.Body(), nil
}
