package telemetry

import (
	"fmt"

	"github.com/triage-ai/triage-guard/pkg/domain/telemetry"
)

type ExporterLocator struct {
	exporters map[string]telemetry.Exporter
}

func NewExporterLocator(opts ...ExporterLocatorOption) *ExporterLocator {
	el := &ExporterLocator{
		exporters: make(map[string]telemetry.Exporter),
	}
	for _, opt := range opts {
		opt(el)
	}
	return el
}

func (p *ExporterLocator) GetExporter(name string, settings map[string]interface{}) (telemetry.Exporter, error) {
	base, ok := p.exporters[name]
	if !ok {
		return nil, fmt.Errorf("unknown exporter: %s", name)
	}
	if err := base.ValidateConfig(settings); err != nil {
		return nil, err
	}
	exporter, err := base.WithSettings(settings)
	if err != nil {
		return nil, err
	}
	return exporter, nil
}

func (p *ExporterLocator) ValidateExporter(name string, settings map[string]interface{}) error {
	base, ok := p.exporters[name]
	if !ok {
		return fmt.Errorf("unknown exporter: %s", name)
	}
	return base.ValidateConfig(settings)
}
