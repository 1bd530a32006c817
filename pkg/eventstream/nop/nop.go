// Package nop provides a Publisher that discards every event, used when the
// event stream is disabled.
package nop

import (
	"context"

	"github.com/cutplanco/cutplan/pkg/eventstream"
)

type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (*Publisher) Publish(context.Context, eventstream.ReleasePlannedEvent) error {
	return nil
}

func (*Publisher) Close() error {
	return nil
}
