//go:build !linux

package main

import (
	"errors"

	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/logging"
)

func openX11(*config.Config, logging.Logger) (backend, error) {
	return nil, errors.New("X11 output is only supported on Linux; use -headless or -preview")
}
