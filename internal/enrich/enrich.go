// Package enrich derives cleaned and inferred fields for deduplicated
// contact records.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"github.com/sells-group/crm-cleaner/internal/model"
)

// Inferrer is the minimal inference surface the orchestrator needs.
type Inferrer interface {
	Infer(ctx context.Context, prompt string) string
	Enabled() bool
}

// Orchestrator applies deterministic enrichers unconditionally and
// inference-backed enrichers while the capability remains enabled.
type Orchestrator struct {
	ai Inferrer
}

// New creates an Orchestrator around the given inference client.
func New(ai Inferrer) *Orchestrator {
	return &Orchestrator{ai: ai}
}

// Enrich returns a copy of rec carrying a superset of its fields, plus the
// number of inference-backed fields that actually came back from the
// backend non-empty. A zero count with a non-empty table means the record
// was processed degraded (capability disabled before or during it).
func (o *Orchestrator) Enrich(ctx context.Context, rec model.Record) (model.Record, int) {
	out := rec.Clone()

	out.Set("name_normalized", NormalizeName(rec.Get("name")))
	out.Set("email_valid", strconv.FormatBool(ValidEmail(rec.Get("email"))))

	if !o.ai.Enabled() {
		return out, 0
	}

	populated := 0
	for _, spec := range InferenceFields {
		value, inferred := o.applyField(ctx, out, spec)
		out.Set(spec.Key, value)
		if inferred {
			populated++
		}
	}
	return out, populated
}

// applyField resolves one derived field. The second return reports whether
// the backend produced a usable answer; defaults, empty responses, and
// unrecognizable responses do not count toward the populated total.
func (o *Orchestrator) applyField(ctx context.Context, rec model.Record, spec FieldSpec) (string, bool) {
	for _, name := range spec.Requires {
		if strings.TrimSpace(rec.Get(name)) == "" {
			// Nothing to infer; don't waste a call on an incomplete record.
			return spec.Default, false
		}
	}

	resp := o.ai.Infer(ctx, spec.Prompt(rec.Get))
	if resp == "" {
		// Disabled mid-record or a degraded single call.
		return "", false
	}
	return normalizeLabel(resp, spec.Labels)
}

// normalizeLabel maps a raw model response onto a declared closed label set.
// The response contract asks for exactly one label, but free text happens;
// matching is case-insensitive and tolerates the label being embedded at the
// start of a longer reply ("Positive." or "Small" for "Small (1-50)").
// Anything unrecognizable becomes "Unknown" rather than polluting the field
// with free text, and the second return reports false so the fallback is
// not mistaken for a real answer. Fields without a label set pass through
// verbatim.
func normalizeLabel(resp string, labels []string) (string, bool) {
	if len(labels) == 0 {
		return resp, true
	}

	clean := strings.ToLower(strings.Trim(strings.TrimSpace(resp), `."'`))
	for _, label := range labels {
		l := strings.ToLower(label)
		if clean == l || strings.HasPrefix(clean, l) || strings.HasPrefix(l, clean) {
			return label, true
		}
	}
	return "Unknown", false
}
