package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ghalamif/mcap2mat"
)

func main() {
	flow, err := mcap2mat.Conf("../../data/mcap2mat.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	res, err := flow.Run(context.Background())
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
	fmt.Printf("converted %d records from %d topics\n", res.Records, len(res.Topics))
}
