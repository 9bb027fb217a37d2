package pairing

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"flavor-pairing/internal/data"
	"flavor-pairing/internal/infrastructure/config"
	"flavor-pairing/internal/pkg/common"

	"go.uber.org/zap"
)

// Dataset 建圖所需的靜態資料
type Dataset struct {
	Base         []string
	Experimental []string
	Profiles     []Profile
}

// Source 配對資料來源
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// ParsePairList 逐行讀取 "A,B"，忽略空行與 # 註解
func ParsePairList(r io.Reader) ([]string, error) {
	var pairs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pairs = append(pairs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pair list: %w", err)
	}
	return pairs, nil
}

// ParseProfiles 解析食材資料 JSON 陣列
func ParseProfiles(r io.Reader) ([]Profile, error) {
	var profiles []Profile
	if err := common.DecodeJSON(r, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return profiles, nil
}

// parseDataset 由三份原始內容組出 Dataset；experimental 與 profiles 可為空
func parseDataset(base, experimental, profiles []byte) (*Dataset, error) {
	ds := &Dataset{}

	var err error
	if ds.Base, err = ParsePairList(bytes.NewReader(base)); err != nil {
		return nil, fmt.Errorf("base pairs: %w", err)
	}
	if len(experimental) > 0 {
		if ds.Experimental, err = ParsePairList(bytes.NewReader(experimental)); err != nil {
			return nil, fmt.Errorf("experimental pairs: %w", err)
		}
	}
	if len(bytes.TrimSpace(profiles)) > 0 {
		if ds.Profiles, err = ParseProfiles(bytes.NewReader(profiles)); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// EmbeddedSource 使用編譯時內嵌的資料
type EmbeddedSource struct{}

// Load 實作 Source
func (EmbeddedSource) Load(ctx context.Context) (*Dataset, error) {
	return parseDataset(data.BasePairs, data.ExperimentalPairs, data.Profiles)
}

// FileSource 從本機檔案讀取
type FileSource struct {
	BasePath         string
	ExperimentalPath string
	ProfilesPath     string
}

// Load 實作 Source
func (s FileSource) Load(ctx context.Context) (*Dataset, error) {
	base, err := os.ReadFile(s.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read base pairs: %w", err)
	}
	experimental, err := readOptional(s.ExperimentalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read experimental pairs: %w", err)
	}
	profiles, err := readOptional(s.ProfilesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	return parseDataset(base, experimental, profiles)
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// NewSource 依設定建立資料來源
func NewSource(cfg config.DataConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		return EmbeddedSource{}, nil
	case config.SourceFile:
		return FileSource{
			BasePath:         cfg.BasePairs,
			ExperimentalPath: cfg.ExperimentalPairs,
			ProfilesPath:     cfg.Profiles,
		}, nil
	case config.SourceRemote:
		return NewRemoteSource(cfg), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Source)
	}
}

// LoadProvider 載入資料並建立 Provider
func LoadProvider(ctx context.Context, src Source) (*Provider, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, common.ErrDataUnavailable.Wrap(err)
	}

	common.LogInfo("配對資料已載入",
		zap.Int("base_pairs", len(ds.Base)),
		zap.Int("experimental_pairs", len(ds.Experimental)),
		zap.Int("profiles", len(ds.Profiles)),
	)

	return NewProvider(ds), nil
}
