// Package handlers provides HTTP request handlers for the webhook receiver.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oremus-labs/webhook-receiver/internal/analyzer"
	"github.com/oremus-labs/webhook-receiver/internal/events"
	"github.com/oremus-labs/webhook-receiver/internal/logutil"
	"github.com/oremus-labs/webhook-receiver/internal/metrics"
	"github.com/oremus-labs/webhook-receiver/internal/store"
)

// Options configures handler runtime behavior.
type Options struct {
	// Now stamps stored events. Defaults to time.Now.
	Now func() time.Time
	// LogPayloads includes the decoded payload in the webhook_received log line.
	LogPayloads bool
	// PublishTimeout bounds each bus publish. Defaults to 5s.
	PublishTimeout time.Duration
}

type eventStore interface {
	Append(context.Context, store.Event) error
	ListAll(context.Context) ([]store.Event, error)
}

type eventPublisher interface {
	Publish(context.Context, events.Event) error
}

// Handler encapsulates dependencies for HTTP handlers.
type Handler struct {
	store  eventStore
	events eventPublisher
	opts   Options

	publishing sync.WaitGroup
}

// New creates a new Handler. publisher may be nil.
func New(st eventStore, publisher eventPublisher, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	if publisher != nil && isNilInterface(publisher) {
		publisher = nil
	}
	return &Handler{
		store:  st,
		events: publisher,
		opts:   opts,
	}
}

// Health returns the health status of the service.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReceiveWebhook reads, parses, analyses and stores an inbound payload.
func (h *Handler) ReceiveWebhook(c *gin.Context) {
	requestID := c.GetString("requestID")

	evt, err := h.ingest(c.Request.Context(), c.Request.Body, requestID)
	if err != nil {
		status := http.StatusInternalServerError
		if isClientError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
	h.publish(c.Request.Context(), evt, requestID)
}

// ListEvents returns every stored event, newest first.
func (h *Handler) ListEvents(c *gin.Context) {
	list, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		logutil.Error("webhook_list_failed", err, logutil.Fields{"requestId": c.GetString("requestID")})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if list == nil {
		list = []store.Event{}
	}
	c.JSON(http.StatusOK, list)
}

// MethodNotAllowed answers any other method on the webhook endpoint.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (h *Handler) ingest(ctx context.Context, body io.Reader, requestID string) (store.Event, error) {
	raw, err := readBody(body)
	if err != nil {
		metrics.ObserveRejected(metrics.ReasonBodyRead)
		logutil.Error("webhook_body_read_failed", err, logutil.Fields{"requestId": requestID})
		return store.Event{}, err
	}

	payload, err := parsePayload(raw)
	if err != nil {
		metrics.ObserveRejected(metrics.ReasonParse)
		logutil.Error("webhook_parse_failed", err, logutil.Fields{"requestId": requestID, "bytes": len(raw)})
		return store.Event{}, err
	}

	fields := logutil.Fields{"requestId": requestID, "bytes": len(raw)}
	if h.opts.LogPayloads {
		fields["payload"] = payload
	}
	logutil.Info("webhook_received", fields)

	structured := analyzer.ExtractStructuredData(payload)
	evt := store.Event{
		StructuredData: structured,
		Analysis:       analyzer.BuildAnalysis(structured, payload),
		Timestamp:      h.opts.Now().UnixMilli(),
	}
	if structured == nil {
		evt.StructuredData = analyzer.FallbackData(payload)
	}

	if err := h.store.Append(ctx, evt); err != nil {
		metrics.ObserveRejected(metrics.ReasonStore)
		logutil.Error("webhook_store_failed", err, logutil.Fields{"requestId": requestID})
		return store.Event{}, errors.New("failed to store event")
	}
	metrics.ObserveAccepted(structured != nil)
	return evt, nil
}

// publish hands the stored event to the bus in the background so the
// response never waits on Redis.
func (h *Handler) publish(ctx context.Context, evt store.Event, requestID string) {
	if h.events == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	h.publishing.Add(1)
	go func() {
		defer h.publishing.Done()
		ctx, cancel := context.WithTimeout(ctx, h.opts.PublishTimeout)
		defer cancel()

		err := h.events.Publish(ctx, events.Event{
			Type: events.TypeWebhookReceived,
			Data: evt,
		})
		if err != nil {
			metrics.ObservePublishFailure()
			logutil.Error("event_publish_failed", err, logutil.Fields{"requestId": requestID})
		}
	}()
}

// Wait blocks until in-flight publishes finish.
func (h *Handler) Wait() {
	h.publishing.Wait()
}

func isNilInterface(value interface{}) bool {
	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return val.IsNil()
	default:
		return false
	}
}
