package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/auth"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/config"
)

// initLogger builds a JSON zap logger writing to output ("stdout",
// "stderr" or a file path). Unknown levels fall back to info.
func initLogger(level, output string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.SecondsDurationEncoder

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig = enc
	cfg.OutputPaths = []string{output}

	return cfg.Build()
}

var errNoSchemes = errors.New("multi auth mode requires at least one authenticator")

// authFactories builds the authenticator for each non-empty auth mode.
var authFactories = map[string]func(*config.Config, *zap.Logger) (auth.Authenticator, error){
	"mtls": func(*config.Config, *zap.Logger) (auth.Authenticator, error) {
		return auth.NewMTLSAuthenticator(), nil
	},
	"basic": func(cfg *config.Config, _ *zap.Logger) (auth.Authenticator, error) {
		return basicAuthenticator(cfg.BasicAuthUsers)
	},
	"apikey": func(cfg *config.Config, _ *zap.Logger) (auth.Authenticator, error) {
		return apiKeyAuthenticator(cfg.APIKeys)
	},
	"multi": createMultiAuthenticator,
}

// createAuthenticator returns nil when authentication is disabled.
func createAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	mode := cfg.AuthModeOrDefault()
	if mode == "none" {
		logger.Info("authentication disabled")
		return nil, nil
	}

	build, ok := authFactories[mode]
	if !ok {
		return nil, fmt.Errorf("unknown auth mode: %s", mode)
	}

	a, err := build(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("authentication enabled", zap.String("mode", mode))
	return a, nil
}

// createMultiAuthenticator chains every configured scheme, mTLS first.
func createMultiAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	var chain []auth.Authenticator

	if cfg.TLSEnabled && cfg.TLSClientAuthOrDefault() != "none" {
		chain = append(chain, auth.NewMTLSAuthenticator())
	}

	if cfg.BasicAuthUsers != "" {
		a, err := basicAuthenticator(cfg.BasicAuthUsers)
		if err != nil {
			return nil, err
		}
		chain = append(chain, a)
	}

	if cfg.APIKeys != "" {
		a, err := apiKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, err
		}
		chain = append(chain, a)
	}

	if len(chain) == 0 {
		return nil, errNoSchemes
	}

	for _, a := range chain {
		logger.Debug("multi-auth scheme", zap.String("scheme", string(a.Scheme())))
	}
	return auth.NewMultiAuthenticator(chain...), nil
}

func basicAuthenticator(users string) (auth.Authenticator, error) {
	a, err := auth.NewBasicAuthenticator(users)
	if err != nil {
		return nil, fmt.Errorf("creating basic authenticator: %w", err)
	}
	return a, nil
}

func apiKeyAuthenticator(keys string) (auth.Authenticator, error) {
	a, err := auth.NewAPIKeyAuthenticator(keys)
	if err != nil {
		return nil, fmt.Errorf("creating API key authenticator: %w", err)
	}
	return a, nil
}
