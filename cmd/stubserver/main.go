// Command stubserver runs the in-memory backend double for local development,
// serving the same REST contract the real backend exposes on port 8000.
package main

import (
	"flag"
	"log"
	"net/http"

	"travelshare/internal/stubapi"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	seed := flag.Int("seed", 12, "number of demo posts to pre-populate")
	flag.Parse()

	srv := stubapi.New()
	if *seed > 0 {
		srv.Seed(*seed)
	}

	log.Printf("Stub backend listening on %s with %d seeded posts", *addr, srv.PostCount())
	log.Fatal(http.ListenAndServe(*addr, srv))
}
