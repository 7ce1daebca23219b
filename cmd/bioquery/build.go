package main

import (
	"fmt"
	"io"

	"github.com/zoobzio/bioquery"
	"github.com/zoobzio/bioquery/internal/config"
	"github.com/zoobzio/bioquery/ncbi"
	"github.com/zoobzio/bioquery/providers/ollama"
	"github.com/zoobzio/bioquery/providers/openai"
	"github.com/zoobzio/bioquery/toolkit/emboss"
	"github.com/zoobzio/bioquery/toolkit/native"
)

// newProvider returns the configured reasoning provider, or nil for none.
func newProvider(cfg config.ProviderConfig) (bioquery.Provider, error) {
	switch cfg.Name {
	case config.ProviderOllama:
		p, err := ollama.New(ollama.Config{
			ServerURL: cfg.BaseURL,
			Model:     cfg.Model,
			JSON:      true,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama provider: %w", err)
		}
		return p, nil
	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		}), nil
	case config.ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}

func newToolkit(cfg config.ToolkitConfig) bioquery.Toolkit {
	if cfg.Name == config.ToolkitEmboss {
		return emboss.New(emboss.ExecRunner{BinDir: cfg.EmbossDir, Timeout: cfg.Timeout})
	}
	return native.New()
}

// newEngine assembles the pipeline described by cfg. Parser debug output
// goes to debug.
func newEngine(cfg *config.Config, debug io.Writer) (*bioquery.Engine, error) {
	opts := []bioquery.EngineOption{
		bioquery.WithMinRunLength(cfg.Extractor.MinRunLength),
	}

	provider, err := newProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if provider != nil {
		var parserOpts []bioquery.Option
		if cfg.Parser.Retries > 0 {
			parserOpts = append(parserOpts, bioquery.WithRetry(cfg.Parser.Retries+1))
		}
		parserOpts = append(parserOpts, bioquery.WithTimeout(cfg.Parser.Timeout))
		if cfg.Parser.Debug {
			parserOpts = append(parserOpts, bioquery.WithDebugWriter(debug))
		}
		opts = append(opts, bioquery.WithPrimary(bioquery.NewPrimaryParser(provider, parserOpts...)))
	}

	if cfg.NCBI.Enabled {
		opts = append(opts, bioquery.WithResolver(ncbi.New(ncbi.Config{
			APIKey:    cfg.NCBI.APIKey,
			Organism:  cfg.NCBI.Organism,
			MaxLength: cfg.NCBI.MaxLength,
		})))
	}

	return bioquery.NewEngine(newToolkit(cfg.Toolkit), opts...), nil
}
