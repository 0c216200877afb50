package asr

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/ccp-p/whisper-transcribe-cli/pkg/utils"
)

// requiredModelFiles 本地模型目录必须包含的制品文件
// 任一缺失都视为模型不完整，交由引擎重新拉取
var requiredModelFiles = []string{
	"model.bin",
	"config.json",
	"tokenizer.json",
	"vocabulary.json",
}

// ModelCache 进程级模型缓存
// 以 (模型名, 设备, 计算精度) 为键，同一键的构造只发生一次，
// 构造完成后的句柄在进程生命周期内共享复用
type ModelCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	loader   ModelLoader
	cacheDir string
}

type cacheEntry struct {
	once  sync.Once
	model Model
	err   error
}

// NewModelCache 创建模型缓存
// cacheDir为本地模型存储目录，loader负责实际的模型构造
func NewModelCache(cacheDir string, loader ModelLoader) *ModelCache {
	return &ModelCache{
		entries:  make(map[string]*cacheEntry),
		loader:   loader,
		cacheDir: cacheDir,
	}
}

func cacheKey(modelName, device, computeType string) string {
	return fmt.Sprintf("%s_%s_%s", modelName, device, computeType)
}

// Get 获取或构造模型句柄
// 缓存命中立即返回；未命中时同键的并发请求只有一个执行构造，
// 其余请求等待同一次构造的结果
func (c *ModelCache) Get(modelName, device, computeType string) (Model, error) {
	key := cacheKey(modelName, device, computeType)

	c.mu.Lock()
	entry, exists := c.entries[key]
	if !exists {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		modelPath := modelName
		if c.LocalModelExists(modelName) {
			modelPath = filepath.Join(c.cacheDir, modelName)
			utils.Info("使用本地模型: %s", modelPath)
		} else {
			utils.Warn("本地模型不完整，%s 将由引擎下载...", modelName)
		}

		utils.Info("加载模型 %s (device=%s, compute_type=%s)...", modelName, device, computeType)
		entry.model, entry.err = c.loader(modelPath, device, computeType)

		if entry.err != nil {
			// 构造失败的键允许后续调用重新构造
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
			return
		}
		utils.Info("模型 %s 加载完成", modelName)
	})

	if exists && entry.err == nil {
		utils.Debug("使用缓存的模型 %s", modelName)
	}

	return entry.model, entry.err
}

// LocalModelExists 检查本地是否有完整的模型副本
func (c *ModelCache) LocalModelExists(modelName string) bool {
	if c.cacheDir == "" {
		return false
	}

	modelDir := filepath.Join(c.cacheDir, modelName)
	if !utils.CheckDirExists(modelDir) {
		return false
	}

	for _, file := range requiredModelFiles {
		if !utils.CheckFileExists(filepath.Join(modelDir, file)) {
			return false
		}
	}

	return true
}

// Evict 从缓存中移除一个键，供将来的淘汰策略使用
func (c *ModelCache) Evict(modelName, device, computeType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(modelName, device, computeType))
}

// Len 返回当前缓存的键数量
func (c *ModelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
