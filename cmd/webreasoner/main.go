// Command webreasoner runs the reasoning web agent against a browser
// environment server for one goal or a file of goals, writing one episode
// record per job into the output directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/hupe1980/webreasoner"
	"github.com/hupe1980/webreasoner/artifact"
	"github.com/hupe1980/webreasoner/config"
	"github.com/hupe1980/webreasoner/environment"
	"github.com/hupe1980/webreasoner/evaluation"
	"github.com/hupe1980/webreasoner/logging"
	"github.com/hupe1980/webreasoner/model"
	anthropicmodel "github.com/hupe1980/webreasoner/model/anthropic"
	openaimodel "github.com/hupe1980/webreasoner/model/openai"
)

type flags struct {
	job        string
	goal       string
	goalsFile  string
	start      int
	end        int
	configName string
	configFile string
	provider   string
	modelName  string
	baseURL    string
	envURL     string
	outputDir  string
	expected   string
	maxSteps   int
	timeout    time.Duration
	agentLimit time.Duration
	logLevel   string
	logFormat  string
}

func main() {
	// API keys may live in a local .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("webreasoner: %v", err)
	}
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("webreasoner", flag.ContinueOnError)
	fs.StringVar(&f.job, "job", "job", "Job name prefix for episode records")
	fs.StringVar(&f.goal, "goal", "", "Single goal to run")
	fs.StringVar(&f.goalsFile, "goals", "", "File with one goal per line")
	fs.IntVar(&f.start, "start", 0, "Index of the first goal to run")
	fs.IntVar(&f.end, "end", -1, "Index after the last goal to run (-1 runs to the end)")
	fs.StringVar(&f.configName, "config", config.DefaultName, "Named agent configuration ("+strings.Join(config.Names(), ", ")+")")
	fs.StringVar(&f.configFile, "config-file", "", "YAML agent configuration (overrides -config)")
	fs.StringVar(&f.provider, "provider", "openai", "Model provider: openai or anthropic")
	fs.StringVar(&f.modelName, "model", "", "Model id (provider default when empty)")
	fs.StringVar(&f.baseURL, "base-url", "", "OpenAI compatible endpoint")
	fs.StringVar(&f.envURL, "env-url", "http://localhost:8000", "Browser environment server URL")
	fs.StringVar(&f.outputDir, "output-dir", "browsing_data", "Directory for episode records")
	fs.StringVar(&f.expected, "expected", "", "YAML or JSON file mapping job names to expected answers")
	fs.IntVar(&f.maxSteps, "max-steps", 30, "Maximum agent steps per episode")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "Timeout per environment step")
	fs.DurationVar(&f.agentLimit, "agent-timeout", 0, "Timeout per agent step (0 disables)")
	fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "text", "Log format: text or json")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if (f.goal == "") == (f.goalsFile == "") {
		return f, errors.New("exactly one of -goal or -goals is required")
	}
	return f, nil
}

func run(ctx context.Context, args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(f.logLevel), f.logFormat, false)

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	jobs, err := loadJobs(f)
	if err != nil {
		return err
	}

	llm, err := newModel(f)
	if err != nil {
		return err
	}

	var expected map[string]string
	if f.expected != "" {
		if expected, err = evaluation.LoadExpected(f.expected); err != nil {
			return err
		}
	}

	w, err := webreasoner.New(llm, cfg, environment.NewHTTP(f.envURL, func(o *environment.HTTPOptions) {
		o.Logger = logger.WithComponent("environment")
	}), func(o *webreasoner.Options) {
		o.MaxSteps = f.maxSteps
		o.StepTimeout = f.timeout
		o.AgentTimeout = f.agentLimit
		o.Store = artifact.NewFileStore(f.outputDir)
		o.Evaluator = evaluation.CompletionEvaluator{Expected: expected}
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	episodes, runErr := w.RunJobs(ctx, jobs)
	for _, ep := range episodes {
		fmt.Printf("%s\tcomplete=%t\tsteps=%d\tcost=%.4f\t%s\n",
			ep.Job, ep.IsComplete, len(ep.History), ep.TotalCost, ep.FinalAction())
	}
	if runErr != nil {
		return runErr
	}

	_, summary, err := w.Evaluate(jobs)
	if err != nil {
		return err
	}
	logger.Info("run summary",
		"episodes", summary.Episodes,
		"completed", summary.Completed,
		"errored", summary.Errored,
		"success_rate", summary.SuccessRate,
		"total_cost", summary.TotalCost,
	)
	return nil
}

func loadConfig(f flags) (config.Config, error) {
	if f.configFile != "" {
		return config.LoadFile(f.configFile)
	}
	return config.Get(f.configName)
}

func loadJobs(f flags) ([]webreasoner.Job, error) {
	if f.goal != "" {
		return []webreasoner.Job{{Name: f.job, Goal: f.goal}}, nil
	}

	file, err := os.Open(f.goalsFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var goals []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			goals = append(goals, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	end := f.end
	if end < 0 || end > len(goals) {
		end = len(goals)
	}
	if f.start < 0 || f.start > end {
		return nil, fmt.Errorf("invalid goal range [%d, %d)", f.start, end)
	}

	jobs := make([]webreasoner.Job, 0, end-f.start)
	for i := f.start; i < end; i++ {
		jobs = append(jobs, webreasoner.Job{Name: fmt.Sprintf("%s_%d", f.job, i), Goal: goals[i]})
	}
	return jobs, nil
}

func newModel(f flags) (model.Model, error) {
	switch f.provider {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if f.modelName != "" {
				o.Model = f.modelName
			}
			o.BaseURL = f.baseURL
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if f.modelName != "" {
				o.Model = anthropic.Model(f.modelName)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", f.provider)
	}
}
