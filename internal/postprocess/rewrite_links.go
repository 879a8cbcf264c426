package postprocess

import (
	"context"

	"github.com/conneroisu/opaque/internal/logging"
)

type rewriteLinks struct {
	targetURL string
	attribute string
	logger    logging.Logger
}

// handle prefixes the attribute with the target URL. Values are joined
// as-is, so "https://example.com" and "/a.png" give
// "https://example.com/a.png".
func (h *rewriteLinks) handle(ctx context.Context, el *Element) error {
	value, ok := el.GetAttribute(h.attribute)
	if !ok {
		return nil
	}
	result := h.targetURL + value
	h.logger.Debug(ctx, "Rewriting link", "attribute", h.attribute, "from", value, "to", result)
	el.SetAttribute(h.attribute, result)
	return nil
}
