package postprocess

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/opaque/internal/ansi"
	"github.com/conneroisu/opaque/internal/cache"
	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
	"github.com/conneroisu/opaque/internal/metrics"
)

const (
	sourceAttribute   = "source"
	relativeAttribute = "relative"
)

type convertAnsi struct {
	fs           afero.Fs
	directory    string
	subdirectory string
	cache        *cache.LRU
	charset      ansi.Charset
	logger       logging.Logger
	metrics      *metrics.Collectors
}

func (h *convertAnsi) handle(ctx context.Context, el *Element) error {
	source, ok := el.GetAttribute(sourceAttribute)
	if !ok {
		return nil
	}
	relative := el.HasAttribute(relativeAttribute)

	key := source
	if relative {
		key = h.subdirectory + "/" + source
	}
	if hit, found := h.cache.Find(key); found {
		h.metrics.CacheHit(h.cache.Name())
		h.logger.Debug(ctx, "Cache hit", "key", key)
		el.Replace(hit)
		return nil
	}
	h.metrics.CacheMiss(h.cache.Name())

	path, err := h.resolve(source, relative)
	if err != nil {
		return err
	}

	op := logging.StartOperation(h.logger, "convert_ansi")
	raw, err := afero.ReadFile(h.fs, path)
	if err != nil {
		op.EndWithError(ctx, err)
		return errors.WrapIO(err, errors.ErrCodeSnippetRead, "unable to read ANSI output file").
			WithPath(path)
	}
	output, err := ansi.RenderBytes(raw, h.charset)
	if err != nil {
		op.EndWithError(ctx, err)
		return errors.WrapIO(err, errors.ErrCodeSnippetRead, "unable to decode ANSI output file").
			WithPath(path).
			WithContext("charset", string(h.charset))
	}
	h.metrics.ObserveRender(op.End(ctx))

	el.Replace(output)
	h.cache.Insert(key, output)
	h.logger.Debug(ctx, "Cache miss, updated", "key", key, "path", path)
	return nil
}

// resolve joins source under the configured directory, and under the
// subdirectory when relative is set. Separators around source are stripped
// so "/etc/passwd" names a file inside the directory; a result that still
// climbs out of it is rejected.
func (h *convertAnsi) resolve(source string, relative bool) (string, error) {
	base := filepath.Clean(h.directory)
	name := strings.Trim(filepath.FromSlash(source), string(filepath.Separator))

	path := filepath.Join(base, name)
	if relative {
		path = filepath.Join(base, h.subdirectory, name)
	}

	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == "." {
		return "", errors.NewSecurityError(errors.ErrCodePathEscape,
			"ANSI output path escapes the source directory").
			WithPath(path).
			WithContext("source", source)
	}
	return path, nil
}
