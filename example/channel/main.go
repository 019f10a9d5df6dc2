package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ghalamif/mcap2mat"
)

func main() {
	flow, err := mcap2mat.Conf("../../data/mcap2mat.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sink, outputs, closeOutputs := mcap2mat.NewChannelSink("fanout", 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fanoutWorker("analysis", outputs)
	}()

	_, err = flow.Run(context.Background(), mcap2mat.StreamOutSink(sink))
	closeOutputs()
	wg.Wait()
	if err != nil {
		log.Fatalf("conversion failed: %v", err)
	}
}

func fanoutWorker(name string, outputs <-chan []mcap2mat.TopicTable) {
	for tables := range outputs {
		for _, t := range tables {
			fmt.Printf("[%s] %s: %d records\n", name, t.Topic, len(t.Data))
		}
	}
}
