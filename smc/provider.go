package smc

import "context"

// Provider produces a key's value on demand. The Store never holds its
// access lock while calling ReadValue, so implementations may use the Store.
type Provider interface {
	// ProviderName identifies the provider in logs and in DetachProvider.
	ProviderName() string

	// ReadValue materializes the current bytes for key. size is the key's
	// declared size; results are padded or truncated to it.
	ReadValue(ctx context.Context, key string, size int) ([]byte, error)
}

// ReadFunc is the function form of Provider.ReadValue.
type ReadFunc func(ctx context.Context, key string, size int) ([]byte, error)

type funcProvider struct {
	name string
	read ReadFunc
}

// NewProviderFunc adapts a function into a named Provider.
func NewProviderFunc(name string, read ReadFunc) Provider {
	return &funcProvider{name: name, read: read}
}

func (p *funcProvider) ProviderName() string { return p.name }

func (p *funcProvider) ReadValue(ctx context.Context, key string, size int) ([]byte, error) {
	return p.read(ctx, key, size)
}

// providerName tolerates nil providers in log output.
func providerName(p Provider) string {
	if p == nil {
		return "*Unreferenced*"
	}
	return p.ProviderName()
}
