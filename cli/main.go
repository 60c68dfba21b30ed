// Package main is the terminal chat front-end for the weather agent.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8501/ws", "Agent WebSocket address")
	sessionID := flag.String("session", "", "Session to resume (empty starts a new one)")
	flag.Parse()

	log.SetFlags(log.Ltime)

	client, err := Dial(*addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	defer client.Close()

	ack, err := client.Hello(*sessionID)
	if err != nil {
		log.Fatalf("Hello failed: %v", err)
	}

	inbound := make(chan any, 16)
	go client.Listen(inbound)

	p := tea.NewProgram(newModel(client, inbound, ack.SessionID, ack.Messages), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
