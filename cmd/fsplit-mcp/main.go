package main

import (
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/sokinpui/fsplit"
)

func main() {
	configFlag := flag.String("config", fsplit.DefaultConfigFile, "path to the config file")
	flag.Parse()

	cfg, err := fsplit.LoadConfig(*configFlag)
	if err != nil {
		log.Fatalf("fsplit-mcp: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"fsplit-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	fsplit.RegisterTools(mcpServer, cfg)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("fsplit-mcp: %v", err)
	}
}
