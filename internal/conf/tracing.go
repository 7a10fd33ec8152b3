package conf

import "fmt"

type TracingExporter = string

const (
	OpenTelemetryTracing TracingExporter = "opentelemetry"
)

type TracingConfig struct {
	Enabled  bool
	Exporter TracingExporter `default:"opentelemetry"`

	// ExporterProtocol is the OTEL_EXPORTER_OTLP_PROTOCOL env variable. The
	// OTLP endpoint itself is read by the exporter from OTEL_EXPORTER_OTLP_*.
	ExporterProtocol string `default:"http/protobuf" envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL"`

	// ServiceName is recorded on every span's resource.
	ServiceName string `default:"siwe" split_words:"true"`
}

func (tc *TracingConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}
	if tc.Exporter != OpenTelemetryTracing {
		return fmt.Errorf("conf: unsupported tracing exporter %q", tc.Exporter)
	}
	return validateOTLPProtocol(tc.ExporterProtocol)
}

func validateOTLPProtocol(protocol string) error {
	switch protocol {
	case "grpc", "http/protobuf":
		return nil
	default:
		return fmt.Errorf("conf: unsupported OpenTelemetry exporter protocol %q", protocol)
	}
}
