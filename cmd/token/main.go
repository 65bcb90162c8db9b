// Command token mints a bearer token for the summarize API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mx-space/summarizer/internal/config"
	"github.com/mx-space/summarizer/internal/pkg/jwt"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	subject := flag.String("sub", "client", "Token subject")
	scope := flag.String("scope", "summarize", "Token scope")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := jwt.New(cfg.JWTSecret).Sign(*subject, *scope, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
