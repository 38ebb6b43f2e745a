// Package slogx provides typed slog attribute constructors with the keys used across the indexer.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	ErrorKey           = "error"
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"
)

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error returns an slog.Attr for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Stringer returns an slog.Attr for a fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

func Strings(key string, values []string) slog.Attr {
	return slog.Any(key, values)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int64(key, int64(value))
}

func Uint32(key string, value uint32) slog.Attr {
	return slog.Uint64(key, uint64(value))
}

func Bool(key string, v bool) slog.Attr {
	return slog.Bool(key, v)
}

func Time(key string, v time.Time) slog.Attr {
	return slog.Time(key, v)
}

func Duration(key string, v time.Duration) slog.Attr {
	return slog.Duration(key, v)
}

// Txid is the attribute used for transaction ids in every pipeline log line.
func Txid(txid string) slog.Attr {
	return slog.String("txid", txid)
}

// Category is the attribute used for token categories.
func Category(category string) slog.Attr {
	return slog.String("category", category)
}
