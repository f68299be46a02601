// Command raceserver runs the race analyzer behind a gRPC endpoint, using
// internal/server's runtime-parsed schema instead of protoc-generated
// stubs.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"

	"github.com/funvibe/funxy-race/internal/server"
)

func main() {
	addr := flag.String("addr", ":50051", "listen address")
	flag.Parse()

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("raceserver: listen: %v", err)
	}

	srv := grpc.NewServer()
	if err := server.Register(srv); err != nil {
		log.Fatalf("raceserver: register: %v", err)
	}

	fmt.Printf("raceserver listening on %s\n", *addr)
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("raceserver: serve: %v", err)
	}
}
