package asr

import (
	"sync"
)

// ProgressEvent 一次进度通知
type ProgressEvent struct {
	Percent int
	Message string
}

// ProgressReporter 将识别协程的进度事件与消费者解耦：
// 生产者写入有界通道，独立协程按序调用回调。
// 百分比在此处强制单调不减并截断到[0,100]。
type ProgressReporter struct {
	mu     sync.Mutex
	last   int
	events chan ProgressEvent
	done   chan struct{}
	closed bool
}

// NewProgressReporter 创建进度报告器并启动消费协程
// callback可以为nil，此时事件被丢弃
func NewProgressReporter(callback ProgressCallback, buffer int) *ProgressReporter {
	if buffer <= 0 {
		buffer = 64
	}

	r := &ProgressReporter{
		last:   -1,
		events: make(chan ProgressEvent, buffer),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		for event := range r.events {
			if callback != nil {
				callback(event.Percent, event.Message)
			}
		}
	}()

	return r
}

// Report 报告一次进度
// 低于此前百分比的值被提升到此前值，保证消费端观察到的序列非递减
func (r *ProgressReporter) Report(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	if percent > 100 {
		percent = 100
	}
	if percent < r.last {
		percent = r.last
	}
	r.last = percent

	// 持锁发送：并发Close时不会向已关闭通道写入
	// 消费协程不取锁，通道满时只会等它消费
	r.events <- ProgressEvent{Percent: percent, Message: message}
}

// Close 关闭报告器并等待已入队的事件全部投递完成
func (r *ProgressReporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	<-r.done
}
