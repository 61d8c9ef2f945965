package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegisterBuildInfo 注册值恒为 1 的 build_info 指标，通过标签暴露服务名、版本与提交号。
// 只有第一次调用生效。
func (m *Metrics) RegisterBuildInfo(serviceName, version, commit string) {
	if m == nil || m.BuildInfo != nil {
		return
	}

	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build information for the service",
	}, []string{"service", "version", "commit"})

	m.BuildInfo.WithLabelValues(orDefault(serviceName, "unknown"), orDefault(version, "dev"), orDefault(commit, "none")).Set(1)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
