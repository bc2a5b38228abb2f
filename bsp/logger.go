package bsp

import "go.uber.org/zap"

var logger = zap.NewNop().Sugar()

// SetLogger replaces the package logger. Passing nil restores the silent default.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.Sugar()
}
