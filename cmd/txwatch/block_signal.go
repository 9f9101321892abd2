//go:build !zmq

package main

import (
	"context"

	"go.uber.org/zap"
)

// startBlockSignal needs the zmq build tag; without it the bitcoin watcher only polls.
func startBlockSignal(_ context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr != "" {
		logger.Warn("built without zmq support, ignoring block announcements", zap.String("addr", addr))
	}
	return nil, nil
}
