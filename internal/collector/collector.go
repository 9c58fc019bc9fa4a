// Package collector implements the conversational field collector: a
// per-session state machine that turns free-form user messages into a
// complete set of typed fields, asking follow-up questions and requiring
// an explicit confirmation before handing the set downstream.
package collector

import (
	"context"
	"fmt"
	"strings"

	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/common/metrics"
	"mobility-intake/internal/models"
	"mobility-intake/internal/schema"
)

type Collector struct {
	schemas   *schema.Registry
	store     Store
	extractor Extractor
	logger    logger.Logger
}

// TurnResult is what one user turn produced: the new state, the reply to
// send back, and, once State is StateComplete, the collected fields.
type TurnResult struct {
	Route     string
	State     State
	Reply     string
	Missing   []string
	Fields    map[string]Value
	Documents []models.Document
}

func New(schemas *schema.Registry, store Store, extractor Extractor, log logger.Logger) *Collector {
	return &Collector{
		schemas:   schemas,
		store:     store,
		extractor: extractor,
		logger:    log.With(map[string]interface{}{"component": "collector"}),
	}
}

// StartRoute enters a route for the session: fresh field set, fresh
// history, state Collecting. Any previous collection for the session is
// discarded. Returns the route's intake opener.
func (c *Collector) StartRoute(ctx context.Context, sessionID, route string) (*TurnResult, error) {
	sch, ok := c.schemas.Route(route)
	if !ok {
		return nil, commonerrors.NewRouteNotConfiguredError(route)
	}

	rec := &Record{
		Route:  route,
		State:  StateCollecting,
		Fields: make(map[string]Value),
	}
	rec.History = append(rec.History, models.Turn{Speaker: models.SpeakerSystem, Text: sch.Opener})

	if err := c.store.Put(ctx, sessionID, rec); err != nil {
		return nil, err
	}

	c.logger.Info("route entered", map[string]interface{}{
		"sessionId": sessionID,
		"route":     route,
	})

	return &TurnResult{
		Route:   route,
		State:   StateCollecting,
		Reply:   sch.Opener,
		Missing: sch.RequiredKeys(),
	}, nil
}

// AttachDocument adds opaque document text to the session's extraction
// context.
func (c *Collector) AttachDocument(ctx context.Context, sessionID string, doc models.Document) error {
	rec, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNoActiveRoute
	}
	rec.Documents = append(rec.Documents, doc)
	return c.store.Put(ctx, sessionID, rec)
}

// Abandon tears down the session's collection state.
func (c *Collector) Abandon(ctx context.Context, sessionID string) error {
	rec, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	return c.store.Delete(ctx, sessionID)
}

// HandleTurn processes one user message for the session. The caller must
// serialize turns per session; a turn's processing fully completes before
// the next one is accepted.
func (c *Collector) HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	rec, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoActiveRoute
	}

	sch, ok := c.schemas.Route(rec.Route)
	if !ok {
		return nil, commonerrors.NewRouteNotConfiguredError(rec.Route)
	}

	var res *TurnResult
	switch rec.State {
	case StateConfirming:
		res = c.handleConfirming(ctx, sessionID, rec, sch, message)
	default:
		res = c.handleCollecting(ctx, rec, sch, message)
	}

	// Recorded after extraction so the prompt carries the message once,
	// as the latest message, not also inside the history window.
	rec.History = append(rec.History, models.Turn{Speaker: models.SpeakerUser, Text: message})

	metrics.TurnsProcessed.WithLabelValues(rec.Route, string(res.State)).Inc()

	if res.State == StateComplete {
		// Terminal: the field set is handed off and the per-route state
		// is torn down.
		res.Documents = rec.Documents
		if err := c.store.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return res, nil
	}

	rec.History = append(rec.History, models.Turn{Speaker: models.SpeakerSystem, Text: res.Reply})
	if err := c.store.Put(ctx, sessionID, rec); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Collector) handleCollecting(ctx context.Context, rec *Record, sch schema.RouteSchema, message string) *TurnResult {
	c.runExtraction(ctx, rec, sch, message)

	missing := missingRequired(sch, rec.Fields)
	if len(missing) == 0 {
		rec.State = StateConfirming
		return &TurnResult{
			Route: rec.Route,
			State: StateConfirming,
			Reply: confirmationSummary(sch, rec.Fields),
		}
	}

	rec.State = StateCollecting
	return &TurnResult{
		Route:   rec.Route,
		State:   StateCollecting,
		Reply:   followUpPrompt(sch, rec.Fields, missing),
		Missing: missing,
	}
}

func (c *Collector) handleConfirming(ctx context.Context, sessionID string, rec *Record, sch schema.RouteSchema, message string) *TurnResult {
	// Affirmative replies complete the route without re-invoking
	// extraction.
	if isAffirmative(message) {
		rec.State = StateComplete
		c.logger.Info("collection complete", map[string]interface{}{
			"sessionId": sessionID,
			"route":     rec.Route,
			"fields":    len(rec.Fields),
		})
		return &TurnResult{
			Route:  rec.Route,
			State:  StateComplete,
			Fields: rec.Fields,
		}
	}

	// Anything else is treated as a possible correction.
	changed := c.runExtraction(ctx, rec, sch, message)
	if !changed {
		return &TurnResult{
			Route: rec.Route,
			State: StateConfirming,
			Reply: confirmationSummary(sch, rec.Fields),
		}
	}

	missing := missingRequired(sch, rec.Fields)
	if len(missing) > 0 {
		rec.State = StateCollecting
		return &TurnResult{
			Route:   rec.Route,
			State:   StateCollecting,
			Reply:   followUpPrompt(sch, rec.Fields, missing),
			Missing: missing,
		}
	}

	// Corrections applied; a fresh summary is required before completing.
	rec.State = StateConfirming
	return &TurnResult{
		Route: rec.Route,
		State: StateConfirming,
		Reply: confirmationSummary(sch, rec.Fields),
	}
}

// runExtraction invokes the extractor and merges coercible values into
// the record, later values overwriting earlier ones so corrections win.
// Extraction failures never advance state; the caller re-prompts.
// Reports whether any field value changed.
func (c *Collector) runExtraction(ctx context.Context, rec *Record, sch schema.RouteSchema, message string) bool {
	out, err := c.extractor.Extract(ctx, ExtractionRequest{
		Schema:    sch,
		Message:   message,
		History:   rec.History,
		Documents: rec.Documents,
	})
	if err != nil {
		metrics.ExtractionFailures.WithLabelValues(rec.Route).Inc()
		c.logger.WithError(err).Warn("extraction failed, re-prompting", map[string]interface{}{
			"route": rec.Route,
		})
		return false
	}

	changed := false
	for key, raw := range out.Fields {
		f, ok := sch.Field(key)
		if !ok {
			continue
		}
		v, ok := coerceValue(f, raw)
		if !ok {
			// Coercion failure leaves the field missing rather than
			// aborting the whole turn.
			c.logger.Debug("field coercion failed", map[string]interface{}{
				"route": rec.Route,
				"field": key,
				"raw":   raw,
			})
			continue
		}
		if prev, exists := rec.Fields[f.Key]; !exists || prev.Raw != v.Raw {
			changed = true
		}
		rec.Fields[f.Key] = v
	}
	return changed
}

// followUpPrompt acknowledges what was captured and asks for the
// still-missing fields using the schema's field descriptions.
func followUpPrompt(sch schema.RouteSchema, fields map[string]Value, missing []string) string {
	var b strings.Builder

	captured := capturedLines(sch, fields)
	if len(captured) > 0 {
		b.WriteString("Thanks! Here's what I have so far:\n")
		for _, line := range captured {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("I still need a few details:\n")
	for _, key := range missing {
		if f, ok := sch.Field(key); ok {
			fmt.Fprintf(&b, "- %s\n", f.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// confirmationSummary lists every collected value and asks for explicit
// confirmation.
func confirmationSummary(sch schema.RouteSchema, fields map[string]Value) string {
	var b strings.Builder
	b.WriteString("**Here's what I've gathered:**\n\n")
	for _, line := range capturedLines(sch, fields) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n**Is this information correct?** (Reply 'yes' to proceed or tell me what to change)")
	return b.String()
}

func capturedLines(sch schema.RouteSchema, fields map[string]Value) []string {
	var lines []string
	for _, f := range sch.Fields {
		if v, ok := fields[f.Key]; ok {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", f.Label, v.Display()))
		}
	}
	return lines
}
