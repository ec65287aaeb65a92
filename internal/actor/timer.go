package actor

import (
	"sync"

	"github.com/RussellLuo/timingwheel"
)

// timerManager 上下文定时器管理
// 注册与取消发生在 arbiter 线程，到期回调来自时间轮线程，需要加锁。
type timerManager struct {
	mu     sync.Mutex
	timers map[int64]*timingwheel.Timer
	nextID int64
	closed bool
}

func newTimerManager() *timerManager {
	return &timerManager{
		timers: make(map[int64]*timingwheel.Timer),
	}
}

// register 分配定时器ID，管理器已关闭时返回 false
func (tm *timerManager) register() (int64, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.closed {
		return 0, false
	}
	tm.nextID++
	id := tm.nextID
	tm.timers[id] = nil
	return id, true
}

// track 记录底层时间轮定时器；ID 已被取消时立即停掉新定时器
func (tm *timerManager) track(id int64, t *timingwheel.Timer) {
	tm.mu.Lock()
	if _, ok := tm.timers[id]; ok {
		tm.timers[id] = t
		tm.mu.Unlock()
		return
	}
	tm.mu.Unlock()
	t.Stop()
}

// alive 检查定时器是否仍然有效（周期定时器续期前检查）
func (tm *timerManager) alive(id int64) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.timers[id]
	return ok
}

// complete 一次性定时器到期后移除
func (tm *timerManager) complete(id int64) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.timers, id)
}

// cancel 取消定时器
func (tm *timerManager) cancel(id int64) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	t, ok := tm.timers[id]
	if !ok {
		return false
	}
	delete(tm.timers, id)
	if t != nil {
		t.Stop()
	}
	return true
}

// cancelAll 取消所有定时器并关闭管理器，上下文拆除时调用
func (tm *timerManager) cancelAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.closed = true
	for id, t := range tm.timers {
		if t != nil {
			t.Stop()
		}
		delete(tm.timers, id)
	}
}
