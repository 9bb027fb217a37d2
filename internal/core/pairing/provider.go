package pairing

import (
	"sync"
	"time"

	"flavor-pairing/internal/pkg/common"

	"go.uber.org/zap"
)

// Provider 依「是否包含實驗性配對」各建一次圖並快取
type Provider struct {
	dataset  *Dataset
	profiles *ProfileIndex

	once   [2]sync.Once
	graphs [2]*Graph
}

// NewProvider 創建 Provider；圖在第一次使用時才建立
func NewProvider(ds *Dataset) *Provider {
	if ds == nil {
		ds = &Dataset{}
	}
	return &Provider{
		dataset:  ds,
		profiles: NewProfileIndex(ds.Profiles),
	}
}

// Graph 取得配對圖，相同旗標永遠回傳同一個實例
func (p *Provider) Graph(includeExperimental bool) *Graph {
	i := 0
	if includeExperimental {
		i = 1
	}

	p.once[i].Do(func() {
		start := time.Now()
		var extra []string
		if includeExperimental {
			extra = p.dataset.Experimental
		}
		p.graphs[i] = Build(p.dataset.Base, extra)

		common.LogInfo("配對圖已建立",
			zap.Bool("experimental", includeExperimental),
			zap.Int("ingredients", p.graphs[i].Size()),
			zap.Int("edges", p.graphs[i].EdgeCount()),
			zap.Duration("耗時", time.Since(start)),
		)
	})

	return p.graphs[i]
}

// Profiles 食材資料索引
func (p *Provider) Profiles() *ProfileIndex {
	return p.profiles
}
