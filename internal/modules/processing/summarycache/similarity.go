package summarycache

import (
	"context"
	"strings"

	"github.com/mx-space/summarizer/internal/models"
	"go.uber.org/zap"
)

// scanFastTier returns the value of the first key, in enumeration order, whose
// category matches and whose word count sits inside the query band.
func (e *Engine) scanFastTier(ctx context.Context, log *zap.Logger, fp Fingerprint) (string, bool) {
	pattern := fp.Pattern()
	keys, err := e.fast.Keys(ctx, e.prefix+pattern.Glob)
	if err != nil {
		e.degraded(log, "fast tier scan failed", err)
		return "", false
	}

	for _, raw := range keys {
		candidate, err := ParseKey(strings.TrimPrefix(raw, e.prefix))
		if err != nil || candidate.Category != pattern.Category {
			continue
		}
		if !pattern.Band.Contains(candidate.WordCount) {
			continue
		}
		summary, found, err := e.fast.Get(ctx, raw)
		if err != nil {
			e.degraded(log, "fast tier candidate read failed", err)
			return "", false
		}
		// Expired between enumeration and read.
		if !found {
			continue
		}
		log.Debug("fast tier similar hit", zap.String("candidate", raw))
		return summary, true
	}
	return "", false
}

// searchDurableTier tries the newest record in the same category and band,
// then a keyword search over the leading normalized words.
func (e *Engine) searchDurableTier(ctx context.Context, log *zap.Logger, fp Fingerprint) (*models.SummaryRecord, Source) {
	band := fp.Band()

	record, err := e.durable.FindRecent(ctx, string(fp.Category), band.Min, band.Max)
	if err != nil {
		e.degraded(log, "durable tier similarity query failed", err)
	} else if record != nil {
		return record, SourceDurableSimilar
	}

	query := fp.LeadingWords(keywordWords)
	if query == "" {
		return nil, ""
	}
	record, err = e.durable.SearchText(ctx, query, band.Min, band.Max)
	if err != nil {
		e.degraded(log, "durable tier keyword search failed", err)
		return nil, ""
	}
	if record != nil {
		return record, SourceDurableKeyword
	}
	return nil, ""
}
