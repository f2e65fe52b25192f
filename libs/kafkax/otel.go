package kafkax

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// HeaderCarrier adapts Kafka headers to the OpenTelemetry propagation API.
// Set replaces an existing header of the same key.
type HeaderCarrier struct {
	Headers []kafka.Header
}

var _ propagation.TextMapCarrier = (*HeaderCarrier)(nil)

func (c *HeaderCarrier) Get(key string) string { return HeaderValue(c.Headers, key) }

func (c *HeaderCarrier) Set(key, value string) {
	for i, h := range c.Headers {
		if h.Key == key {
			c.Headers[i].Value = []byte(value)
			return
		}
	}
	c.Headers = append(c.Headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *HeaderCarrier) Keys() []string {
	out := make([]string, len(c.Headers))
	for i, h := range c.Headers {
		out[i] = h.Key
	}
	return out
}

// InjectTraceHeaders returns headers plus the trace context of ctx, encoded
// by the global propagator.
func InjectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	c := &HeaderCarrier{Headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, c)
	return c.Headers
}

// ExtractTraceContext makes the producer's span the remote parent of ctx.
func ExtractTraceContext(ctx context.Context, msg kafka.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, &HeaderCarrier{Headers: msg.Headers})
}
