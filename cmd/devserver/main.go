// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs the in-memory minigram development backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jeranaias/minigram/internal/devserver"
	"github.com/jeranaias/minigram/internal/logging"
)

func main() {
	addr := ":8080"
	cfg := devserver.Config{
		JWTSecret:  os.Getenv("MINIGRAM_DEV_SECRET"),
		DevCode:    os.Getenv("MINIGRAM_DEV_CODE"),
		BotCode:    os.Getenv("MINIGRAM_DEV_BOT_CODE"),
		LiveKitURL: os.Getenv("MINIGRAM_DEV_LIVEKIT_URL"),
	}
	logOpts := logging.Options{Env: "development", Level: "info"}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "Error: %s requires a value\n", arg)
				os.Exit(2)
			}
			i++
			return args[i]
		}
		switch arg {
		case "--addr", "-a":
			addr = next()
		case "--secret":
			cfg.JWTSecret = next()
		case "--code":
			cfg.DevCode = next()
		case "--verbose", "-v":
			logOpts.Level = "debug"
		case "--help", "-h":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown option %q\n", arg)
			os.Exit(2)
		}
	}

	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: a signing secret is required (--secret or MINIGRAM_DEV_SECRET)")
		os.Exit(2)
	}

	logger, err := logging.New(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if logOpts.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := devserver.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func printHelp() {
	fmt.Println(`minigram-devserver - in-memory backend for local development

Usage: minigram-devserver [OPTIONS]

Options:
  --addr, -a ADDR   Listen address (default :8080)
  --secret SECRET   Token signing secret (or MINIGRAM_DEV_SECRET)
  --code CODE       Fixed login code for every phone (or MINIGRAM_DEV_CODE)
  --verbose, -v     Log every request
  --help, -h        Show this help

Login codes are written to the log when no fixed code is set.`)
}
