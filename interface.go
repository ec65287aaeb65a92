// Package sas 监督式 actor 调度器
// 对外入口：初始化运行时、创建 arbiter、启动受监督的 actor。
package sas

import (
	"context"
	"time"

	"sas/internal/actor"
	"sas/internal/config"
	"sas/pkg/glog"
	"sas/pkg/lib"
	"sas/pkg/lib/workers"
)

type (
	IActor        = actor.IActor
	ISupervised   = actor.ISupervised
	IHandler      = actor.IHandler
	Actor         = actor.Actor
	Task          = actor.Task
	Context       = actor.Context
	Envelope      = actor.Envelope
	Addr          = actor.Addr
	SyncAddr      = actor.SyncAddr
	Arbiter       = actor.Arbiter
	ArbiterHandle = actor.ArbiterHandle
	Config        = config.Config
)

func init() {
	InitWithConfig(config.Default())
}

// Init 从配置文件初始化运行时
func Init(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	InitWithConfig(cfg)
	return nil
}

// InitWithConfig 应用配置
func InitWithConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	glog.Init(&cfg.Glog)
	actor.SetThroughput(cfg.Scheduler.Throughput)
	workers.Tune(cfg.Workers.PoolSize)
}

// DefaultConfig 生成默认配置
func DefaultConfig() *Config {
	return config.Default()
}

// NewArbiter 创建并启动一个线程绑定的调度器
func NewArbiter(name string) *Arbiter {
	return actor.NewArbiter(name)
}

// GetArbiter 按名字查找 arbiter
func GetArbiter(name string) *Arbiter {
	return actor.GetArbiter(name)
}

// Start 启动受监督的 actor，必须在 arb 的线程上调用
func Start(arb *Arbiter, factory func(ctx *Context) IActor) (*Addr, *SyncAddr) {
	return actor.Start(arb, factory)
}

// StartIn 在目标 arbiter 的线程上启动受监督的 actor
func StartIn(h *ArbiterHandle, factory func(ctx *Context) IActor) (*SyncAddr, error) {
	return actor.StartIn(h, factory)
}

// Shutdown 停止所有 arbiter 并回收运行时资源
func Shutdown(timeout time.Duration) error {
	actor.StopAllArbiters()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := lib.ShutdownGoroutines(ctx)
	glog.Stop()
	return err
}
