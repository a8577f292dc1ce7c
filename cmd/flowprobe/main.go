// Command flowprobe runs scripted conversation flows against a WhatsApp
// style webhook deployment and reports per-actor results.
//
// Usage:
//
//	flowprobe -flow flows/expense.json
//	flowprobe -list
//	flowprobe -flow flows/expense.json -check
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowprobe/flowprobe"
	"github.com/flowprobe/flowprobe/config"
	"github.com/flowprobe/flowprobe/core"
)

func main() {
	var (
		flowPath   = flag.String("flow", "", "path to a flow file (.json/.yaml)")
		configPath = flag.String("config", "", "optional settings YAML overlay")
		list       = flag.Bool("list", false, "list runnable flows in the flows directory")
		check      = flag.Bool("check", false, "validate the flow and its media files without running")
		jsonOut    = flag.Bool("json", false, "print the run result as JSON")
	)
	flag.Parse()

	if err := run(*flowPath, *configPath, *list, *check, *jsonOut); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(flowPath, configPath string, list, check, jsonOut bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := config.FromEnv()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}

	probe := flowprobe.New(func(o *flowprobe.Options) {
		o.Settings = settings
	})

	if list {
		return listFlows(ctx, probe)
	}

	if flowPath == "" {
		return fmt.Errorf("a flow file is required (-flow)")
	}

	spec, err := probe.LoadFlow(flowPath)
	if err != nil {
		return err
	}

	if check {
		return checkFlow(probe, spec)
	}

	result, err := probe.Run(ctx, spec, nil)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func listFlows(ctx context.Context, probe *flowprobe.Probe) error {
	flows, err := probe.Discover(ctx)
	if err != nil {
		return err
	}
	if len(flows) == 0 {
		fmt.Println("no runnable flows found")
		return nil
	}
	for _, f := range flows {
		fmt.Printf("%-30s steps=%d actors=%d", f.Name, len(f.Spec.Steps), f.ActorCount)
		if len(f.Media) > 0 {
			fmt.Printf(" media=%v", f.Media)
		}
		fmt.Println()
	}
	return nil
}

func checkFlow(probe *flowprobe.Probe, spec core.FlowSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if missing := probe.CheckMedia(spec); len(missing) > 0 {
		return fmt.Errorf("missing media files: %v", missing)
	}
	fmt.Println("flow is runnable")
	return nil
}

func printResult(result core.RunResult) {
	for _, r := range result.Results {
		status := "FAIL"
		if r.Success {
			status = "OK"
		}
		fmt.Printf("%s  %s (%s)  %.0f%%\n", status, r.Actor.Name, r.Actor.Phone, r.SuccessRate)
		for _, s := range r.Steps {
			mark := "✗"
			if s.Success {
				mark = "✓"
			}
			line := fmt.Sprintf("  %s step %d [%s] %s", mark, s.StepIndex+1, s.Tool, s.StepText)
			if s.Error != "" {
				line += ": " + s.Error
			}
			fmt.Println(line)
		}
		if r.Error != "" {
			fmt.Printf("  run error: %s\n", r.Error)
		}
	}
	fmt.Printf("actors: %d/%d successful\n", result.SuccessfulActors(), len(result.Results))
}
