// Command mcp-server serves the presentation quality tools over MCP stdio.
// It needs no database server: configuration comes from PQS_* environment
// variables and history, when enabled, is a local SQLite file.
//
// Usage:
//
//	mcp-server                  serve over stdio
//	mcp-server setup [flags]    register with the desktop MCP client
//	mcp-server status           show the current registration
//	mcp-server uninstall        remove the registration
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/presentation-quality-server/internal/config"
	"github.com/presentation-quality-server/internal/mcp"
	"github.com/presentation-quality-server/internal/setup"
)

func main() {
	if len(os.Args) > 1 {
		if err := runCommand(os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load lightweight configuration
	cfg := config.LoadLiteConfig()

	log.Printf("Data directory: %s (history: %t)", cfg.DataDir, cfg.History)

	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Printf("MCP server failed: %v", err)
		return
	}

	log.Println("Presentation quality MCP server stopped")
}

func runCommand(name string, args []string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("client-config", "", "desktop client config file (default: per-OS location)")

	switch name {
	case "setup":
		binary := fs.String("binary", "", "server binary to register (default: this executable)")
		dataDir := fs.String("data-dir", "", "data directory passed as PQS_DATA_DIR")
		history := fs.Bool("history", false, "enable report history")
		if err := fs.Parse(args); err != nil {
			return err
		}
		path, err := setup.Register(setup.Options{
			ConfigPath: *configPath,
			BinaryPath: *binary,
			DataDir:    *dataDir,
			History:    *history,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered %q in %s\nRestart the client to load the server.\n", setup.ServerName, path)
		return nil

	case "status":
		if err := fs.Parse(args); err != nil {
			return err
		}
		path, err := resolveClientConfig(*configPath)
		if err != nil {
			return err
		}
		status, err := setup.Inspect(path)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)

	case "uninstall":
		if err := fs.Parse(args); err != nil {
			return err
		}
		path, err := resolveClientConfig(*configPath)
		if err != nil {
			return err
		}
		removed, err := setup.Unregister(path)
		if err != nil {
			return err
		}
		if removed {
			fmt.Printf("Removed %q from %s\n", setup.ServerName, path)
		} else {
			fmt.Printf("%q was not registered in %s\n", setup.ServerName, path)
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (expected setup, status or uninstall)", name)
	}
}

func resolveClientConfig(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return setup.DefaultConfigPath()
}
