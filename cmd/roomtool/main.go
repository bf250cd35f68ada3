// roomtool is a CLI utility for inspecting and converting room scan packages.
package main

import (
	"fmt"
	"os"

	"github.com/Faultbox/roomtex/internal/config"
	"github.com/Faultbox/roomtex/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	var code int
	switch command {
	case "info":
		code = cmdInfo(cfg, args)
	case "check":
		code = cmdCheck(cfg, args)
	case "watch":
		code = cmdWatch(cfg, args)
	case "layers":
		code = cmdLayers(cfg, args)
	case "rewrite":
		code = cmdRewrite(cfg, args)
	case "config":
		code = cmdConfig(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}

	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`roomtool - room scan package utility

Usage:
  roomtool [global options] <command> [options] [dir]

Commands:
  info [dir]              Show package contents
  check [dir]             Validate package cardinalities
  watch [dir]             Reload and validate the package whenever it changes
  layers [dir] [out]      Export photo layers as lossless WebP
  rewrite <dir> <out>     Decode and re-encode a package
  config show             Print the effective configuration
  config save [file]      Write the effective configuration as YAML

Global options:
  -config <file>          Config file (.yaml or .toml)
  -dir <dir>              Default package directory
  -completion faces|object
                          Sub-mesh completion mode
  -no-layers              Skip decoding photo layers
  -debounce <duration>    Watch debounce interval
  -debug                  Enable debug logging
  -log-file <file>        Also write logs to a rotating file

Examples:
  roomtool info ./TextureData
  roomtool -completion object check ./TextureData
  roomtool layers ./TextureData ./RoomTextureBundle
  roomtool rewrite -photos 4 ./TextureData ./trimmed
  roomtool -dir ./TextureData -completion object config save`)
}
