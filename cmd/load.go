package cmd

import (
	"context"

	"golang.org/x/sync/errgroup"

	"eznv-restore/internal/archive"
	"eznv-restore/internal/config"
	"eznv-restore/internal/gist"
	"eznv-restore/internal/logger"
	"eznv-restore/internal/manifest"
)

// load fetches the manifest and reads the installer registry concurrently.
// Either failure aborts the other and is returned before anything is dispatched.
func (o *options) load(ctx context.Context, log *logger.Logger, args []string) (manifest.Manifest, config.Registry, error) {
	cfgPath := o.configPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		cfgPath = p
	}

	var (
		m   manifest.Manifest
		reg config.Registry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m, err = o.fetch(gctx, log, args)
		return err
	})
	g.Go(func() error {
		log.Debug("[DEBUG] Loading installer config from %s\n", cfgPath)
		var err error
		reg, err = config.LoadRegistry(cfgPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	log.Debug("[DEBUG] Loaded %d manifest files and %d installers\n", len(m), len(reg))
	return m, reg, nil
}

func (o *options) fetch(ctx context.Context, log *logger.Logger, args []string) (manifest.Manifest, error) {
	if o.archivePath != "" {
		log.Debug("[DEBUG] Reading backup archive %s\n", o.archivePath)
		return archive.Load(o.archivePath)
	}

	client := &gist.Client{BaseURL: o.apiURL, HTTPClient: o.httpClient}
	log.Debug("[DEBUG] Fetching gist %s from %s\n", args[0], o.apiURL)
	return client.Fetch(ctx, args[0])
}
