package main

import (
	"flag"
	"log"

	httpadapter "github.com/hijjiri/todo-api/internal/interface/http"
)

// サーバを起動せずに openapi.json だけ書き出す
func main() {
	out := flag.String("out", "openapi.json", "output path")
	flag.Parse()

	if err := httpadapter.WriteOpenAPI(*out); err != nil {
		log.Fatalf("failed to write openapi: %v", err)
	}
	log.Printf("wrote %s", *out)
}
