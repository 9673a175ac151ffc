package main

import (
	"fmt"
	"log"
	"net/http"

	"railvoice-backend/internal/config"
	"railvoice-backend/internal/server"
)

func main() {
	cfg := config.Load()
	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	defer s.Close()
	addr := ":" + cfg.Port
	fmt.Printf("RAILVOICE server listening on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}
