package main

import (
	"fmt"
	"os"

	"github.com/stojg/descent/lag"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: avglag <csv_file> <topic_name>")
		os.Exit(1)
	}

	s, err := lag.AverageFile(os.Args[1], os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Topic: %s\n", s.Topic)
	fmt.Printf("Partitions: %d\n", s.Partitions)
	fmt.Printf("Total Lag: %d\n", s.Total)
	fmt.Printf("Average Lag: %.2f\n", s.Average)
}
