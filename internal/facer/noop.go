package facer

import "context"

// NoopProvider returns empty results for every operation. It is the default
// when no face engine is configured, so the rest of the application keeps
// working without one.
type NoopProvider struct{}

func NewNoopProvider() *NoopProvider {
	return &NoopProvider{}
}

func (p *NoopProvider) Name() string {
	return "noop"
}

func (p *NoopProvider) Analyze(ctx context.Context, image []byte) ([]Face, error) {
	return []Face{}, nil
}

func (p *NoopProvider) Find(ctx context.Context, image []byte, galleryRoot string) ([]string, error) {
	return []string{}, nil
}
