package actor

import (
	"sas/internal/errs"

	"github.com/duke-git/lancet/v2/maputil"
	"golang.org/x/exp/slices"
)

// arbiters 全局 arbiter 注册表，名字到实例的映射
var arbiters = maputil.NewConcurrentMap[string, *Arbiter](8)

func registerArbiter(a *Arbiter) error {
	if a.name == "" {
		return errs.ErrNameCannotBeEmpty()
	}
	if _, ok := arbiters.Get(a.name); ok {
		return errs.ErrNameAlreadyRegistered(a.name)
	}
	arbiters.Set(a.name, a)
	return nil
}

func unregisterArbiter(name string) {
	arbiters.Delete(name)
}

// GetArbiter 按名字查找 arbiter
func GetArbiter(name string) *Arbiter {
	a, _ := arbiters.Get(name)
	return a
}

// ArbiterNames 列出所有已注册的 arbiter 名字（有序）
func ArbiterNames() []string {
	var names []string
	arbiters.Range(func(key string, _ *Arbiter) bool {
		names = append(names, key)
		return true
	})
	slices.Sort(names)
	return names
}

// StopAllArbiters 停止所有 arbiter 并等待退出
func StopAllArbiters() {
	var all []*Arbiter
	arbiters.Range(func(_ string, a *Arbiter) bool {
		all = append(all, a)
		return true
	})
	for _, a := range all {
		a.Stop()
	}
	for _, a := range all {
		a.Join()
	}
}
