// Package main はTodo APIに接続するターミナルクライアントです。
package main

import (
	"flag"
	"fmt"
	"os"

	"go-mongo-todo/internal/client"
	"go-mongo-todo/internal/tui"
)

func main() {
	defaultURL := os.Getenv("TODO_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	baseURL := flag.String("url", defaultURL, "base URL of the todo API")
	flag.Parse()

	board := client.NewBoard(client.New(*baseURL, nil))
	if err := tui.Run(board); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
