package main

import (
	"time"

	"oryn/internal/oryn/backend"
	"oryn/internal/oryn/backend/fakebackend"
	"oryn/internal/oryn/backend/rodbackend"
	"oryn/internal/oryn/orynconfig"
)

// buildBackend selects the concrete Backend per cfg.Backend.Driver: "fake"
// (used by scripted smoke tests) selects the in-memory fixture, and any other
// value, including the default "rod", drives a real go-rod/CDP browser.
func buildBackend(c *orynconfig.Config) backend.Backend {
	if c.Backend.Driver == "fake" {
		return fakebackend.New()
	}
	rc := rodbackend.DefaultConfig()
	rc.Headless = c.Backend.Headless
	if d := c.GetBackendTimeout(); d > 0 {
		rc.NavTimeout = d
	} else {
		rc.NavTimeout = 30 * time.Second
	}
	return rodbackend.New(rc)
}
