// Package metrics 提供接收引擎的 Prometheus 指标
//
// [ReceiveMetrics] 为每个 Actor 生成一个 receive.Observer，
// 按 actor 标签统计消息分类、处理结果、超时回调和跳过缓存深度：
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewReceiveMetrics(reg)
//
//	cfg := actor.DefaultSystemConfig()
//	cfg.Observer = func(pid *actor.PID) receive.Observer { return m.Observer(pid.ID) }
//
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics
