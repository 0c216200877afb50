package asr

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// countingModel 用于观察构造次数的空模型
type countingModel struct {
	path        string
	device      string
	computeType string
}

func (m *countingModel) Transcribe(ctx context.Context, audioPath, language string, opts TuningOptions) (*SegmentStream, *RecognitionInfo, error) {
	stream := NewSegmentStream(1)
	stream.Close(nil)
	return stream, &RecognitionInfo{}, nil
}

func countingLoader(counter *int32) ModelLoader {
	return func(modelPath, device, computeType string) (Model, error) {
		atomic.AddInt32(counter, 1)
		return &countingModel{path: modelPath, device: device, computeType: computeType}, nil
	}
}

func TestModelCacheSingleConstruction(t *testing.T) {
	var constructions int32
	cache := NewModelCache(t.TempDir(), countingLoader(&constructions))

	// 相同键请求两次只构造一次
	m1, err := cache.Get("turbo", "cpu", "int8")
	assert.NoError(t, err)
	m2, err := cache.Get("turbo", "cpu", "int8")
	assert.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
	assert.Same(t, m1, m2)

	// 不同设备是独立的键，触发第二次构造
	m3, err := cache.Get("turbo", "cuda", "float16")
	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&constructions))
	assert.NotSame(t, m1, m3)

	assert.Equal(t, 2, cache.Len())
}

func TestModelCacheConcurrentGet(t *testing.T) {
	var constructions int32
	cache := NewModelCache(t.TempDir(), countingLoader(&constructions))

	// 同一个未初始化键的并发请求不应重复构造
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get("turbo", "cpu", "int8")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&constructions))
}

func TestModelCacheLoadErrorNotCached(t *testing.T) {
	calls := 0
	loader := func(modelPath, device, computeType string) (Model, error) {
		calls++
		if calls == 1 {
			return nil, assert.AnError
		}
		return &countingModel{}, nil
	}

	cache := NewModelCache(t.TempDir(), loader)

	_, err := cache.Get("turbo", "cpu", "int8")
	assert.Error(t, err)

	// 失败的构造不占据缓存，下一次请求重新构造
	m, err := cache.Get("turbo", "cpu", "int8")
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, 2, calls)
}

func TestModelCacheEvict(t *testing.T) {
	var constructions int32
	cache := NewModelCache(t.TempDir(), countingLoader(&constructions))

	cache.Get("turbo", "cpu", "int8")
	cache.Evict("turbo", "cpu", "int8")
	assert.Equal(t, 0, cache.Len())

	cache.Get("turbo", "cpu", "int8")
	assert.Equal(t, int32(2), atomic.LoadInt32(&constructions))
}

func TestLocalModelExists(t *testing.T) {
	cacheDir := t.TempDir()
	cache := NewModelCache(cacheDir, countingLoader(new(int32)))

	// 目录不存在
	assert.False(t, cache.LocalModelExists("turbo"))

	// 目录存在但制品不完整
	modelDir := filepath.Join(cacheDir, "turbo")
	assert.NoError(t, os.MkdirAll(modelDir, 0755))
	assert.NoError(t, os.WriteFile(filepath.Join(modelDir, "model.bin"), []byte("x"), 0644))
	assert.False(t, cache.LocalModelExists("turbo"))

	// 全部制品就位
	for _, name := range []string{"config.json", "tokenizer.json", "vocabulary.json"} {
		assert.NoError(t, os.WriteFile(filepath.Join(modelDir, name), []byte("x"), 0644))
	}
	assert.True(t, cache.LocalModelExists("turbo"))
}

// 本地模型完整时，加载器应收到本地路径而不是模型名
func TestGetUsesLocalPathWhenComplete(t *testing.T) {
	cacheDir := t.TempDir()
	modelDir := filepath.Join(cacheDir, "turbo")
	assert.NoError(t, os.MkdirAll(modelDir, 0755))
	for _, name := range requiredModelFiles {
		assert.NoError(t, os.WriteFile(filepath.Join(modelDir, name), []byte("x"), 0644))
	}

	var gotPath string
	loader := func(modelPath, device, computeType string) (Model, error) {
		gotPath = modelPath
		return &countingModel{}, nil
	}

	cache := NewModelCache(cacheDir, loader)
	_, err := cache.Get("turbo", "cpu", "int8")
	assert.NoError(t, err)
	assert.Equal(t, modelDir, gotPath)
}
