package asset

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Commit persists the current content, map and tree under keys namespaced
// by pipelineKey. The record's keys and size are only updated once every
// write succeeded; writes that did succeed before a failure are left in
// the cache.
func (a *Asset) Commit(ctx context.Context, pipelineKey string) error {
	if a.ast == nil && a.value.ASTKey != "" {
		if _, err := a.GetAST(ctx); err != nil {
			return err
		}
	}
	sourceMap, err := a.GetMap(ctx)
	if err != nil {
		return err
	}
	tree := a.ast

	// A tree with nothing else is committed on its own: printing it now
	// would defeat keeping it as the source of truth.
	treeOnly := a.content.IsEmpty() && a.value.ContentKey == "" && tree != nil

	var stream *Stream
	if !treeOnly {
		stream, err = a.GetStream(ctx)
		if err != nil {
			return err
		}
		if stream.Consumed() {
			return fmt.Errorf("committing %s: %w", a.value.FilePath, ErrStreamAlreadyConsumed)
		}
	}

	contentKey := a.GetCacheKey("content" + pipelineKey)
	mapKey := a.GetCacheKey("map" + pipelineKey)
	astKey := a.GetCacheKey("ast" + pipelineKey)

	counter := &byteCounter{}
	group, groupCtx := errgroup.WithContext(ctx)
	if stream != nil {
		group.Go(func() error {
			defer stream.Close()
			return a.options.Cache.SetStream(groupCtx, contentKey, io.TeeReader(stream, counter))
		})
	}
	if sourceMap != nil {
		group.Go(func() error {
			return a.options.Cache.Set(groupCtx, mapKey, sourceMap)
		})
	}
	if tree != nil {
		group.Go(func() error {
			return a.options.Cache.Set(groupCtx, astKey, tree)
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("committing %s: %w", a.value.FilePath, err)
	}

	a.value.ContentKey = contentKey
	a.value.MapKey = ""
	if sourceMap != nil || tree != nil {
		a.value.MapKey = mapKey
	}
	a.value.ASTKey = ""
	if tree != nil {
		a.value.ASTKey = astKey
		a.isASTDirty = false
	}
	if stream != nil {
		a.value.Stats.Size = counter.n
	}
	return nil
}
