package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ghalamif/mcap2mat"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "convert":
		err = convertCommand(os.Args[2:])
	case "topics":
		err = topicsCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("mcap2mat %s: %v", cmd, err)
	}
}

func convertCommand(args []string) error {
	cfg, err := mcap2mat.ConfigFromArgs("convert", args)
	if err != nil {
		return err
	}
	res, err := run(cfg)
	if err != nil {
		return err
	}
	if res.DryRun {
		printTopics(res.SortedTopics())
		return nil
	}
	fmt.Printf("wrote %d records from %d topics to %s (%d kept raw after decode failures)\n",
		res.Records, len(res.Topics), cfg.Output, res.Fallbacks)
	return nil
}

func topicsCommand(args []string) error {
	cfg, err := mcap2mat.ConfigFromArgs("topics", append([]string{"-dry-run"}, args...))
	if err != nil {
		return err
	}
	res, err := run(cfg)
	if err != nil {
		return err
	}
	printTopics(res.SortedTopics())
	return nil
}

func run(cfg *mcap2mat.Config) (*mcap2mat.Result, error) {
	rt, err := mcap2mat.NewRuntime(cfg)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}

func printTopics(topics []string) {
	for _, t := range topics {
		fmt.Println(t)
	}
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./mcap2mat.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := mcap2mat.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

// statsCommand prints the headline counters from a metrics textfile written
// by a previous run.
func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	path := fs.String("metrics-file", "./mcap2mat.prom", "Metrics textfile written by convert -metrics-file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	targets := map[string]float64{
		"mcap2mat_records_admitted_total": 0,
		"mcap2mat_records_filtered_total": 0,
		"mcap2mat_decode_fallback_total":  0,
		"mcap2mat_topics_seen":            0,
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("admitted=%.0f filtered=%.0f fallbacks=%.0f topics=%.0f\n",
		targets["mcap2mat_records_admitted_total"],
		targets["mcap2mat_records_filtered_total"],
		targets["mcap2mat_decode_fallback_total"],
		targets["mcap2mat_topics_seen"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`mcap2mat CLI

Usage:
  mcap2mat <command> [flags]

Commands:
  convert    Convert an MCAP recording into a MAT-file
  topics     List the topics of a recording (same flags as convert, never writes)
  validate   Load and validate a config file without converting
  stats      Print the counters from a metrics textfile

Flags (convert, topics):
  -config file.yaml   load settings from YAML; explicit flags override it
  -in PATH            input .mcap
  -out PATH           output .mat
  -topics a,b         only keep these topics
  -time-range s,e     keep log times in [s, e] seconds; either side may be empty
  -proto-set PATH     Protobuf FileDescriptorSet
  -proto-path DIR     directory of .proto files (repeatable)
  -keep-raw           add a raw column with the undecoded bytes
  -compress           zlib-compress MAT variables
  -dry-run            only report the topics
  -log-level LEVEL    debug, info, warn, error
  -metrics-file PATH  write Prometheus metrics after the run
  -catalog-dsn DSN    record the run in Postgres
  -upload s3://b/k    upload the finished file

Examples:
  mcap2mat convert -in drive.mcap -out drive.mat -topics /imu,/gps -time-range 10,
  mcap2mat topics -in drive.mcap
  mcap2mat validate -config ./mcap2mat.yaml
  mcap2mat stats -metrics-file ./mcap2mat.prom
`)
}
