package conf

import "fmt"

type MetricsExporter = string

const (
	Prometheus           MetricsExporter = "prometheus"
	OpenTelemetryMetrics MetricsExporter = "opentelemetry"
)

type MetricsConfig struct {
	Enabled bool

	Exporter MetricsExporter `default:"opentelemetry"`

	// ExporterProtocol is the OTEL_EXPORTER_OTLP_PROTOCOL env variable,
	// only used when exporter is opentelemetry.
	ExporterProtocol string `default:"http/protobuf" envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL"`

	PrometheusListenHost string `default:"0.0.0.0" envconfig:"OTEL_EXPORTER_PROMETHEUS_HOST"`
	PrometheusListenPort string `default:"9100" envconfig:"OTEL_EXPORTER_PROMETHEUS_PORT"`
}

func (mc MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	switch mc.Exporter {
	case Prometheus:
		return nil
	case OpenTelemetryMetrics:
		return validateOTLPProtocol(mc.ExporterProtocol)
	default:
		return fmt.Errorf("conf: unsupported metrics exporter %q", mc.Exporter)
	}
}
