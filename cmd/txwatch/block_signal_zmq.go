//go:build zmq

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"syscall"
	"time"

	"github.com/goodnatureofminers/txconfirm-backend/internal/clock"
	"github.com/pebbe/zmq4"
	"go.uber.org/zap"
)

const hashblockTopic = "hashblock"

// startBlockSignal wakes the bitcoin watcher on every block bitcoind publishes.
// Bursts collapse into one pending wake-up.
func startBlockSignal(ctx context.Context, addr string, logger *zap.Logger) (<-chan struct{}, error) {
	if addr == "" {
		return nil, nil
	}
	sock, err := dialHashblock(addr)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", addr, err)
	}

	logger = logger.Named("block_signal").With(zap.String("addr", addr))
	wake := make(chan struct{}, 1)
	go func() {
		defer sock.Close()
		for ctx.Err() == nil {
			frames, err := sock.RecvMessageBytes(0)
			switch {
			case zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN):
				// receive timeout, recheck ctx
			case err != nil:
				logger.Warn("zmq recv failed", zap.Error(err))
				_ = clock.Sleep(ctx, time.Second)
			case len(frames) < 2:
				logger.Warn("skip malformed zmq message", zap.Int("frames", len(frames)))
			default:
				logger.Debug("block announced", zap.String("hash", hex.EncodeToString(frames[1])))
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()

	logger.Info("listening for block announcements")
	return wake, nil
}

// dialHashblock opens a SUB socket on the hashblock topic with a 1s receive timeout
// so the reader can notice cancellation.
func dialHashblock(addr string) (sock *zmq4.Socket, err error) {
	if sock, err = zmq4.NewSocket(zmq4.SUB); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			sock.Close()
		}
	}()
	if err = sock.SetSubscribe(hashblockTopic); err != nil {
		return nil, err
	}
	if err = sock.SetRcvtimeo(time.Second); err != nil {
		return nil, err
	}
	if err = sock.Connect(addr); err != nil {
		return nil, err
	}
	return sock, nil
}
