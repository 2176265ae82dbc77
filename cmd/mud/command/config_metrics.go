package command

type MetricsConfig struct {
	Addr string `json:"addr"`
}

func (m *MetricsConfig) validate() error {
	return nil
}

func (m *MetricsConfig) addr() string {
	if m.Addr == "" {
		return ":9090"
	}
	return m.Addr
}
