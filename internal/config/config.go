// Package config 运行时配置
package config

import (
	"os"

	"sas/internal/errs"
	"sas/pkg/glog"

	"gopkg.in/yaml.v3"
)

// Config 运行时配置
type Config struct {
	// Glog 日志配置
	Glog glog.Config `json:"glog" yaml:"glog"`

	// Scheduler 调度配置
	Scheduler struct {
		// Throughput arbiter 单次排空最多连续执行的任务数，超过后让出 CPU
		Throughput int `json:"throughput" yaml:"throughput"`
	} `json:"scheduler" yaml:"scheduler"`

	// Workers 短任务线程池配置
	Workers struct {
		// PoolSize 线程池容量
		PoolSize int `json:"poolSize" yaml:"poolSize"`
	} `json:"workers" yaml:"workers"`
}

// Load 从 YAML 文件加载配置，缺省字段使用默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.ErrReadConfigFileFailed(err)
	}
	config := Default()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, errs.ErrUnmarshalConfigFailed(err)
	}
	return config, nil
}

// Default 生成默认配置
func Default() *Config {
	cfg := &Config{
		Glog: *glog.DefaultConfig(),
	}
	cfg.Scheduler.Throughput = 1024
	cfg.Workers.PoolSize = 5000
	return cfg
}
