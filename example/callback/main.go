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

	callback := func(tables []mcap2mat.TopicTable) error {
		for _, table := range tables {
			var first, last int64
			if n := len(table.Timestamps); n > 0 {
				first, last = table.Timestamps[0], table.Timestamps[n-1]
			}
			fmt.Printf("%s -> %s records=%d span=[%d, %d]ns\n",
				table.Topic,
				table.Name,
				len(table.Data),
				first,
				last,
			)
		}
		return nil
	}

	if _, err := flow.Run(context.Background(), mcap2mat.StreamOutCallback("stdout", callback)); err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
}
