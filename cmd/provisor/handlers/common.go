// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/imamik/provisor/internal/api"
	"github.com/imamik/provisor/internal/config"
	"github.com/imamik/provisor/internal/provisioning"
	"github.com/imamik/provisor/internal/provisioning/kinds"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newExecutor creates the REST executor.
	newExecutor = func(timeout time.Duration) api.Executor {
		return api.NewClient(api.WithTimeout(timeout))
	}

	// loadConfig resolves and validates host + token.
	loadConfig = config.Load

	// loadTimeouts loads the timing configuration.
	loadTimeouts = config.LoadTimeouts

	// loadSpecFile loads a resource spec from file.
	loadSpecFile = config.LoadSpecFile

	// kindForName resolves a kind name to its strategy.
	kindForName = kinds.ForName

	// stdout is the handler output sink.
	stdout io.Writer = os.Stdout
)

// buildOrchestrator wires config, executor and kind strategy into an
// orchestrator for one invocation.
func buildOrchestrator(host, token, kindName string, extra ...provisioning.Option) (*provisioning.Orchestrator, error) {
	cfg, err := loadConfig(host, token)
	if err != nil {
		return nil, err
	}

	kind, err := kindForName(kindName)
	if err != nil {
		return nil, err
	}

	timeouts := loadTimeouts()
	opts := append([]provisioning.Option{provisioning.WithTimeouts(timeouts)}, extra...)

	return provisioning.New(
		kind,
		newExecutor(timeouts.RequestTimeout),
		api.NewCredential(cfg.Host, cfg.Token),
		opts...,
	), nil
}

// emit renders the result and combines a render failure with the
// operation's own error without masking the latter.
func emit(result *provisioning.Result, format string, opErr error) error {
	if result != nil {
		if err := renderResult(stdout, result, format); err != nil {
			if opErr != nil {
				return fmt.Errorf("%w (additionally failed to render result: %v)", opErr, err)
			}
			return err
		}
	}
	return opErr
}
