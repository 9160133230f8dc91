// Package config 加载 Actor 系统、日志与指标配置
//
// 默认值来自 [DefaultConfig]，可选的 YAML 文件覆盖其中的字段：
//
//	cfg, err := config.Load("config.yaml")
//	sys := actor.NewSystemWithConfig("app", cfg.SystemConfig(logger))
package config
