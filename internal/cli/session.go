/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/botobag/graphcache/cache"
	"github.com/botobag/graphcache/internal/config"
	"github.com/botobag/graphcache/storage/sqlite"
)

// session is a cache hydrated from the configured database.
type session struct {
	ctx   context.Context
	cache *cache.Cache
	store *sqlite.Store
	out   *formatter
}

func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if len(opts.Database) > 0 {
		settings.Database = opts.Database
	}

	level, _ := settings.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cacheConfig, err := settings.CacheConfig(logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load schema", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := sqlite.Open(ctx, settings.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	cacheConfig.Storage = store

	c := cache.New(cacheConfig)
	if err := c.Hydrate(ctx); err != nil {
		_ = store.Close()
		return nil, WrapExitError(ExitCommandError, "hydrate cache", err)
	}
	logger.Debug("cache opened", "database", settings.Database)

	return &session{
		ctx:   ctx,
		cache: c,
		store: store,
		out: &formatter{
			format: opts.Format,
			writer: cmd.OutOrStdout(),
		},
	}, nil
}

// persist saves what the command changed.
func (s *session) persist() error {
	if err := s.cache.Persist(s.ctx); err != nil {
		return WrapExitError(ExitCommandError, "persist cache", err)
	}
	return nil
}

func (s *session) Close() error {
	return s.store.Close()
}
